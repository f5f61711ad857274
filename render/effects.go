package render

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	opensimplex "github.com/ojrac/opensimplex-go"
)

type mote struct {
	x, y  float32 // world coordinates
	size  float32
	phase float32
	speed float32
}

// Effects draws the ambient layers: slanted light rays during daylight hours,
// drifting motes, and the surface shimmer. Motes live in world space so they
// pan and zoom with the tank.
type Effects struct {
	noise  opensimplex.Noise
	motes  []mote
	worldW float32
	worldH float32
}

func NewEffects(seed int64, count int, worldW, worldH float32) *Effects {
	rng := rand.New(rand.NewSource(seed))
	motes := make([]mote, count)
	for i := range motes {
		motes[i] = mote{
			x:     rng.Float32() * worldW,
			y:     rng.Float32() * worldH,
			size:  1 + rng.Float32()*2,
			phase: rng.Float32() * 100,
			speed: 4 + rng.Float32()*8,
		}
	}
	return &Effects{
		noise:  opensimplex.NewNormalized(seed),
		motes:  motes,
		worldW: worldW,
		worldH: worldH,
	}
}

// Update advances mote drift. dt is wall-clock seconds; motes rise slowly and
// wobble sideways through the noise field.
func (e *Effects) Update(dt, elapsed float32) {
	for i := range e.motes {
		m := &e.motes[i]
		wobble := float32(e.noise.Eval2(float64(m.phase), float64(elapsed)*0.2))*2 - 1
		m.x += wobble * 6 * dt
		m.y -= m.speed * dt
		if m.y < 0 {
			m.y = e.worldH
			m.x = float32(math.Mod(float64(m.x+m.phase*13), float64(e.worldW)))
		}
		if m.x < 0 {
			m.x += e.worldW
		}
		if m.x > e.worldW {
			m.x -= e.worldW
		}
	}
}

// DrawRays paints slanted light shafts from the surface. Each shaft's alpha
// breathes with the noise field; strength scales the whole pass, so callers
// fade rays out at dawn and dusk.
func (e *Effects) DrawRays(theme Theme, screenW, screenH int32, elapsed, strength float32) {
	if strength <= 0 {
		return
	}
	const rays = 7
	w := float32(screenW)
	h := float32(screenH)
	for i := 0; i < rays; i++ {
		fi := float64(i)
		baseX := w * (float32(i) + 0.5) / rays
		sway := float32(e.noise.Eval2(fi*3.7, float64(elapsed)*0.05)-0.5) * w * 0.1
		alpha := float32(e.noise.Eval2(fi*1.9, float64(elapsed)*0.12))
		c := theme.RayColor
		c.A = uint8(float32(c.A) * alpha * strength)

		topX := baseX + sway
		halfTop := w * 0.015
		halfBot := w * 0.055
		skew := w * 0.12

		rl.DrawTriangle(
			rl.Vector2{X: topX - halfTop, Y: 0},
			rl.Vector2{X: topX + skew - halfBot, Y: h},
			rl.Vector2{X: topX + halfTop, Y: 0},
			c,
		)
		rl.DrawTriangle(
			rl.Vector2{X: topX + halfTop, Y: 0},
			rl.Vector2{X: topX + skew - halfBot, Y: h},
			rl.Vector2{X: topX + skew + halfBot, Y: h},
			c,
		)
	}
}

// causticAlpha maps a normalized noise sample to patch opacity. Samples below
// the visibility floor return zero so dim cells are skipped entirely.
func causticAlpha(base uint8, n, strength float32) uint8 {
	v := (n - 0.45) * 1.8
	if v <= 0 || strength <= 0 {
		return 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(float32(base) * v * strength)
}

// DrawCaustics paints shimmering light patches along the tank floor, the
// refracted counterpart of the surface rays. Strength follows the same
// daylight curve as DrawRays.
func (e *Effects) DrawCaustics(theme Theme, toScreen func(wx, wy float32) (float32, float32), zoom, elapsed, strength float32) {
	if strength <= 0 {
		return
	}
	const cells = 26
	step := e.worldW / cells
	floorY := e.worldH - 5
	for i := 0; i < cells; i++ {
		wx := (float32(i) + 0.5) * step
		n := float32(e.noise.Eval2(float64(wx)*0.02, float64(elapsed)*0.35))
		c := theme.RayColor
		c.A = causticAlpha(c.A, n, strength)
		if c.A == 0 {
			continue
		}
		sx, sy := toScreen(wx, floorY)
		rl.DrawEllipse(int32(sx), int32(sy), step*0.7*zoom*n, 3*zoom, c)
	}
}

// DrawMotes renders the drifting particles through the given world-to-screen
// transform.
func (e *Effects) DrawMotes(theme Theme, toScreen func(wx, wy float32) (float32, float32), zoom float32) {
	for i := range e.motes {
		m := &e.motes[i]
		sx, sy := toScreen(m.x, m.y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, m.size*zoom, theme.MoteColor)
	}
}

// DrawSurface renders the shimmering water line along the top of the tank.
func (e *Effects) DrawSurface(theme Theme, toScreen func(wx, wy float32) (float32, float32), zoom, elapsed float32) {
	const segments = 48
	step := e.worldW / segments
	for i := 0; i < segments; i++ {
		x0 := float32(i) * step
		x1 := x0 + step
		y0 := float32(e.noise.Eval2(float64(x0)*0.01, float64(elapsed)*0.6)) * 4
		y1 := float32(e.noise.Eval2(float64(x1)*0.01, float64(elapsed)*0.6)) * 4
		sx0, sy0 := toScreen(x0, y0)
		sx1, sy1 := toScreen(x1, y1)
		c := theme.RayColor
		c.A = 120
		rl.DrawLineEx(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, 2*zoom, c)
	}
}
