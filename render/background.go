package render

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Background draws the water gradient and sand floor. Colors come from the
// theme, modulated by time of day (darker at night) and water quality
// (a green murk creeps in as quality drops).
type Background struct {
	theme Theme
}

func NewBackground(theme Theme) *Background {
	return &Background{theme: theme}
}

func (b *Background) SetTheme(theme Theme) { b.theme = theme }

// daylight returns a brightness factor in [0.35,1] for the given hour,
// peaking at midday with smooth dawn/dusk ramps.
func daylight(hour float32) float32 {
	// Cosine day curve centered on 13:00.
	d := float32(math.Cos(float64(hour-13) / 24 * 2 * math.Pi))
	v := 0.675 + 0.325*d
	if v < 0.35 {
		v = 0.35
	}
	return v
}

func shade(c rl.Color, brightness, murk float32) rl.Color {
	r := float32(c.R) * brightness
	g := float32(c.G)*brightness + murk*40
	bl := float32(c.B) * brightness * (1 - murk*0.3)
	if g > 255 {
		g = 255
	}
	return rl.Color{R: uint8(r), G: uint8(g), B: uint8(bl), A: c.A}
}

// Draw fills the viewport with the water gradient, then the sand band along
// the tank floor if it is in view.
func (b *Background) Draw(screenW, screenH int32, timeOfDay, waterQuality float32, floorScreenY float32) {
	bright := daylight(timeOfDay)
	murk := 1 - waterQuality
	if murk < 0 {
		murk = 0
	}
	if murk > 1 {
		murk = 1
	}

	top := shade(b.theme.WaterTop, bright, murk*0.6)
	bottom := shade(b.theme.WaterBottom, bright, murk)
	rl.DrawRectangleGradientV(0, 0, screenW, screenH, top, bottom)

	if floorScreenY < float32(screenH) {
		sand := shade(b.theme.SandColor, bright*0.9+0.1, murk*0.3)
		rl.DrawRectangle(0, int32(floorScreenY), screenW, screenH-int32(floorScreenY), sand)
	}
}
