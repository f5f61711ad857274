package render

import (
	"math"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/saagar210/DeepTank/camera"
	"github.com/saagar210/DeepTank/config"
	"github.com/saagar210/DeepTank/frame"
	"github.com/saagar210/DeepTank/genome"
	"github.com/saagar210/DeepTank/sprite"
	"github.com/saagar210/DeepTank/telemetry"
)

// TraitSource resolves a trait record ID to its full record. The frame
// producer implements this; the compositor pulls records lazily when a frame
// references an ID whose sprites are not cached yet.
type TraitSource interface {
	Genome(id uint32) (genome.TraitRecord, bool)
}

// Compositor owns the displayed scene: it ingests authoritative frames,
// keeps the sprite cache warm for whatever is on screen, and draws the tank
// in a fixed layer order. All methods run on the render thread.
type Compositor struct {
	cfg    *config.Config
	view   *camera.Viewport
	interp *frame.Interpolator
	cache  *sprite.Cache
	traits TraitSource
	bg     *Background
	fx     *Effects
	theme  Theme
	perf   *telemetry.PerfCollector
	ht     HitTester

	paused   bool
	selected uint32
	hasSel   bool
	hovered  uint32
	hasHover bool

	lastEvictTick uint64
	lastEvicted   int

	start time.Time
}

// New builds a compositor. perf may be nil to disable phase timing.
func New(cfg *config.Config, view *camera.Viewport, cache *sprite.Cache, traits TraitSource, perf *telemetry.PerfCollector, fxSeed int64) *Compositor {
	theme := ThemeByName(cfg.Render.Theme)
	tickDur := time.Duration(cfg.Derived.TickSec * float64(time.Second))
	return &Compositor{
		cfg:    cfg,
		view:   view,
		interp: frame.NewInterpolator(tickDur),
		cache:  cache,
		traits: traits,
		bg:     NewBackground(theme),
		fx:     NewEffects(fxSeed, cfg.Render.ParticleCount, cfg.Derived.TankW32, cfg.Derived.TankH32),
		theme:  theme,
		perf:   perf,
		start:  time.Now(),
	}
}

func (c *Compositor) phase(name string) {
	if c.perf != nil {
		c.perf.StartPhase(name)
	}
}

// Ingest feeds one authoritative frame and requests sprites for any trait
// record the frame references that is not already cached.
func (c *Compositor) Ingest(f *frame.Frame, now time.Time) {
	c.interp.Update(f, now)
	for id := range f.ActiveIDs() {
		if c.cache.Has(id) || c.cache.Pending(id) {
			continue
		}
		if rec, ok := c.traits.Genome(id); ok {
			c.cache.Ensure(rec)
		}
	}
}

// Update advances non-drawing state once per display frame: collects
// finished sprite generations, runs the periodic eviction sweep, and moves
// the ambient particles.
func (c *Compositor) Update(now time.Time, dt float32) {
	c.phase(telemetry.PhaseSprites)
	c.cache.Collect()

	c.phase(telemetry.PhaseEvict)
	c.lastEvicted = 0
	if cur := c.interp.Current(); cur != nil {
		interval := uint64(c.cfg.Cache.EvictInterval)
		if cur.Tick >= c.lastEvictTick+interval {
			c.lastEvicted = c.cache.Evict(cur.ActiveIDs())
			c.lastEvictTick = cur.Tick
		}
	}

	c.phase(telemetry.PhaseEffects)
	c.fx.Update(dt, c.elapsed(now))
}

func (c *Compositor) elapsed(now time.Time) float32 {
	return float32(now.Sub(c.start).Seconds())
}

// Draw renders the whole scene in fixed order: water, light rays and floor
// caustics, decorations, food and bubbles, fish back to front, selection
// feedback, motes, surface shimmer, overlays.
func (c *Compositor) Draw(now time.Time) {
	screenW := int32(c.view.ScreenW)
	screenH := int32(c.view.ScreenH)

	cur := c.interp.Current()

	c.phase(telemetry.PhaseWorld)
	timeOfDay := float32(12.0)
	quality := float32(1.0)
	if cur != nil {
		timeOfDay = cur.TimeOfDay
		quality = cur.WaterQuality
	}
	_, floorY := c.view.WorldToScreen(0, c.view.WorldH)
	c.bg.Draw(screenW, screenH, timeOfDay, quality, floorY)

	elapsed := c.elapsed(now)
	daylight := c.rayStrength(timeOfDay)
	c.fx.DrawRays(c.theme, screenW, screenH, elapsed, daylight)
	c.fx.DrawCaustics(c.theme, c.view.WorldToScreen, c.view.Zoom, elapsed, daylight)

	if cur == nil {
		// Nothing authoritative yet: water only, plus a quiet hint.
		rl.DrawText("waiting for simulation...", screenW/2-110, screenH/2, 20, c.theme.TextColor)
		return
	}

	c.drawDecorations(cur)
	c.drawFoodAndBubbles(cur)

	c.phase(telemetry.PhaseEntities)
	alpha := c.interp.Alpha(now)
	c.drawEntities(cur, alpha, elapsed)
	c.drawSelection(cur, alpha, elapsed)

	c.phase(telemetry.PhaseEffects)
	c.fx.DrawMotes(c.theme, c.view.WorldToScreen, c.view.Zoom)
	c.fx.DrawSurface(c.theme, c.view.WorldToScreen, c.view.Zoom, elapsed)

	c.phase(telemetry.PhaseUI)
	if cur.ActiveEvent != "" {
		rl.DrawText(cur.ActiveEvent, 12, 36, 18, c.theme.TextColor)
	}
	if c.paused {
		rl.DrawRectangle(0, 0, screenW, screenH, rl.Color{R: 0, G: 0, B: 20, A: 90})
		rl.DrawText("PAUSED", screenW/2-46, screenH/2-10, 24, c.theme.TextColor)
	}
}

// rayStrength fades light rays in over the first daylight hour and out over
// the last; outside daylight hours there are no rays.
func (c *Compositor) rayStrength(hour float32) float32 {
	start := float32(c.cfg.Render.DaylightStart)
	end := float32(c.cfg.Render.DaylightEnd)
	if hour <= start || hour >= end {
		return 0
	}
	s := float32(1.0)
	if d := hour - start; d < 1 {
		s = d
	}
	if d := end - hour; d < 1 && d < s {
		s = d
	}
	return s
}

func (c *Compositor) drawDecorations(f *frame.Frame) {
	for i := range f.Decorations {
		d := &f.Decorations[i]
		sx, sy := c.view.WorldToScreen(d.X, d.Y)
		s := d.Scale * c.view.Zoom
		flip := float32(1)
		if d.FlipX {
			flip = -1
		}
		switch d.Kind {
		case "plant":
			green := rl.Color{R: 40, G: 130, B: 60, A: 255}
			for blade := -1; blade <= 1; blade++ {
				bx := sx + float32(blade)*6*s*flip
				rl.DrawTriangle(
					rl.Vector2{X: bx - 4*s, Y: sy},
					rl.Vector2{X: bx + float32(blade)*3*s, Y: sy - 42*s},
					rl.Vector2{X: bx + 4*s, Y: sy},
					green,
				)
			}
		default: // rock and anything unrecognized
			grey := rl.Color{R: 110, G: 105, B: 100, A: 255}
			rl.DrawEllipse(int32(sx), int32(sy-8*s), 22*s, 14*s, grey)
			rl.DrawEllipse(int32(sx+10*s*flip), int32(sy-4*s), 14*s, 10*s,
				rl.Color{R: 90, G: 86, B: 82, A: 255})
		}
	}
}

func (c *Compositor) drawFoodAndBubbles(f *frame.Frame) {
	flake := rl.Color{R: 225, G: 200, B: 140, A: 230}
	for i := range f.Food {
		sx, sy := c.view.WorldToScreen(f.Food[i].X, f.Food[i].Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 2.2*c.view.Zoom, flake)
	}
	bubble := rl.Color{R: 220, G: 240, B: 255, A: 110}
	for i := range f.Bubbles {
		b := &f.Bubbles[i]
		sx, sy := c.view.WorldToScreen(b.X, b.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), b.Radius*c.view.Zoom, bubble)
	}
}

// drawEntities paints fish back to front. Depth picks the sprite band and
// linearly modulates size and brightness on top of the band quantization.
func (c *Compositor) drawEntities(f *frame.Frame, alpha, elapsed float32) {
	order := make([]int, len(f.Entities))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return f.Entities[order[a]].Z < f.Entities[order[b]].Z
	})

	for _, idx := range order {
		e := &f.Entities[idx]
		x, y := c.interp.LerpEntity(e, alpha)
		sx, sy := c.view.WorldToScreen(x, y)
		if !c.view.IsVisible(x, y, 64) {
			continue
		}

		set, ok := c.cache.Get(e.TraitID)
		if !ok {
			c.drawFallback(e, sx, sy)
			continue
		}
		c.drawSprite(set, e, sx, sy, elapsed)
	}
}

func (c *Compositor) drawSprite(set *sprite.Set, e *frame.Entity, sx, sy, elapsed float32) {
	band := BandForZ(e.Z)
	tex := set.Texture(band)

	sizeMod := (0.9 + 0.2*e.Z) * c.view.Zoom
	w := float32(tex.Width) * sizeMod
	h := float32(tex.Height) * sizeMod

	src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
	facingLeft, tilt := orientFromHeading(e.Heading)
	if facingLeft {
		src.Width = -src.Width
	}
	rot := tilt * 180 / math.Pi
	if facingLeft {
		rot = -rot
	}

	bright := 0.7 + 0.3*e.Z
	a := float32(1.0)
	if e.Behavior == frame.Dying {
		// Terminal cue: belly-up roll plus a slow opacity pulse.
		rot += 155
		a = 0.45 + 0.35*float32(math.Sin(float64(elapsed)*5))
	}
	tint := rl.Color{
		R: uint8(255 * bright),
		G: uint8(255 * bright),
		B: uint8(255 * bright),
		A: uint8(255 * a),
	}
	if e.Infected {
		tint.R = uint8(float32(tint.R) * 0.6)
		tint.B = uint8(float32(tint.B) * 0.6)
	}

	dst := rl.Rectangle{X: sx, Y: sy, Width: w, Height: h}
	origin := rl.Vector2{X: w / 2, Y: h / 2}
	rl.DrawTexturePro(tex, src, dst, origin, rot, tint)
}

// orientFromHeading resolves the producer's heading (radians, atan2
// convention) into a horizontal facing and a pitch for a right-facing
// sprite. Pitch is capped so fish never stand upright.
func orientFromHeading(h float32) (facingLeft bool, tilt float32) {
	const maxTilt = 0.4
	facingLeft = h > math.Pi/2 || h < -math.Pi/2
	tilt = h
	if facingLeft {
		if h >= 0 {
			tilt = math.Pi - h
		} else {
			tilt = -math.Pi - h
		}
	}
	if tilt > maxTilt {
		tilt = maxTilt
	}
	if tilt < -maxTilt {
		tilt = -maxTilt
	}
	return facingLeft, tilt
}

// drawFallback stands in while a sprite is still generating: a soft disc in
// the genome's base color, or neutral grey when the record is unknown too.
func (c *Compositor) drawFallback(e *frame.Entity, sx, sy float32) {
	col := rl.Color{R: 150, G: 150, B: 150, A: 200}
	if rec, ok := c.traits.Genome(e.TraitID); ok {
		rec = rec.Clamped()
		cf := colorful.Hsl(float64(rec.BaseHue), float64(rec.Saturation), float64(rec.Lightness))
		col = rl.Color{R: uint8(cf.R * 255), G: uint8(cf.G * 255), B: uint8(cf.B * 255), A: 200}
	}
	r := (6 + 8*e.Z) * c.view.Zoom
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, col)
}

func (c *Compositor) drawSelection(f *frame.Frame, alpha, elapsed float32) {
	ring := func(id uint32, base rl.Color, pulse bool) {
		x, y, ok := c.interp.PositionOf(id, alpha)
		if !ok {
			return
		}
		sx, sy := c.view.WorldToScreen(x, y)
		r := 24 * c.view.Zoom
		if pulse {
			r += float32(math.Sin(float64(elapsed)*4)) * 3 * c.view.Zoom
		}
		rl.DrawCircleLines(int32(sx), int32(sy), r, base)
	}

	if c.hasHover && (!c.hasSel || c.hovered != c.selected) {
		ring(c.hovered, rl.Color{R: 255, G: 255, B: 255, A: 90}, false)
	}
	if c.hasSel {
		ring(c.selected, rl.Color{R: 255, G: 220, B: 90, A: 220}, true)
	}
}

// candidates returns every current entity at its interpolated position.
func (c *Compositor) candidates(now time.Time) []Candidate {
	cur := c.interp.Current()
	if cur == nil {
		return nil
	}
	alpha := c.interp.Alpha(now)
	out := make([]Candidate, 0, len(cur.Entities))
	for i := range cur.Entities {
		e := &cur.Entities[i]
		x, y := c.interp.LerpEntity(e, alpha)
		out = append(out, Candidate{ID: e.ID, X: x, Y: y})
	}
	return out
}

// pickRadiusWorld converts the configured screen-pixel pick radius to world
// units at the current zoom.
func (c *Compositor) pickRadiusWorld() float32 {
	return float32(c.cfg.Render.PickRadius) / c.view.Zoom
}

// SelectAt resolves a click to an entity. A miss clears the selection.
func (c *Compositor) SelectAt(sx, sy float32, now time.Time) (uint32, bool) {
	wx, wy := c.view.ScreenToWorld(sx, sy)
	id, ok := c.ht.Pick(c.candidates(now), wx, wy, c.pickRadiusWorld())
	if ok {
		c.selected = id
		c.hasSel = true
	} else {
		c.hasSel = false
	}
	return id, ok
}

// HoverAt updates the hover highlight for the cursor position.
func (c *Compositor) HoverAt(sx, sy float32, now time.Time) {
	wx, wy := c.view.ScreenToWorld(sx, sy)
	id, ok := c.ht.Pick(c.candidates(now), wx, wy, c.pickRadiusWorld())
	c.hovered = id
	c.hasHover = ok
}

// Selected returns the currently selected entity, if any. Selection persists
// by ID; if the entity has despawned the second return is false and the
// selection is dropped.
func (c *Compositor) Selected() (frame.Entity, bool) {
	if !c.hasSel {
		return frame.Entity{}, false
	}
	cur := c.interp.Current()
	if cur == nil {
		return frame.Entity{}, false
	}
	e, ok := cur.EntityByID(c.selected)
	if !ok {
		c.hasSel = false
	}
	return e, ok
}

func (c *Compositor) ClearSelection() { c.hasSel = false }

// Hovered returns the entity currently under the cursor, if any.
func (c *Compositor) Hovered() (uint32, bool) {
	return c.hovered, c.hasHover
}

func (c *Compositor) SetPaused(p bool) { c.paused = p }
func (c *Compositor) TogglePause()     { c.paused = !c.paused }
func (c *Compositor) Paused() bool     { return c.paused }

// Primed reports whether at least one authoritative frame has arrived.
func (c *Compositor) Primed() bool { return c.interp.Primed() }

// CurrentTick returns the newest authoritative tick, 0 before priming.
func (c *Compositor) CurrentTick() uint64 {
	if cur := c.interp.Current(); cur != nil {
		return cur.Tick
	}
	return 0
}

// ThemeName returns the active theme.
func (c *Compositor) ThemeName() string { return c.theme.Name }

// SetTheme switches palettes by name; unknown names fall back to the default.
func (c *Compositor) SetTheme(name string) {
	c.theme = ThemeByName(name)
	c.bg.SetTheme(c.theme)
}

// CycleTheme switches to the next theme and returns its name.
func (c *Compositor) CycleTheme() string {
	c.theme = NextTheme(c.theme.Name)
	c.bg.SetTheme(c.theme)
	return c.theme.Name
}

// CacheStats returns a telemetry row describing the sprite cache.
func (c *Compositor) CacheStats() telemetry.CacheStatsCSV {
	return telemetry.CacheStatsCSV{
		Tick:      int64(c.CurrentTick()),
		Ready:     c.cache.Len(),
		Generated: c.cache.Generated,
		Dropped:   c.cache.Dropped,
		Evicted:   c.lastEvicted,
	}
}

// CaptureFrame writes a screenshot of the current frame buffer.
func (c *Compositor) CaptureFrame(path string) {
	rl.TakeScreenshot(path)
}

// Resize propagates a window resize to the viewport.
func (c *Compositor) Resize(w, h float32) {
	c.view.Resize(w, h)
}
