// Package ui draws the control panel and the selected-fish inspector on top
// of the composited scene.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/saagar210/DeepTank/frame"
	"github.com/saagar210/DeepTank/genome"
)

// HUD is the status line state shown in the panel.
type HUD struct {
	Tick       uint64
	Population int
	FPS        int
	CacheReady int
	Theme      string
	Paused     bool
	Primed     bool
}

// Actions reports which panel buttons were pressed this frame.
type Actions struct {
	TogglePause bool
	Feed        bool
	AddFish     bool
	CycleTheme  bool
	ResetView   bool
	Screenshot  bool
}

const (
	panelW    = 150
	buttonH   = 26
	buttonGap = 6
)

// DrawPanel renders the control column along the right edge and returns any
// button presses.
func DrawPanel(screenW int32, hud HUD) Actions {
	x := float32(screenW - panelW - 10)
	y := float32(10)
	var a Actions

	button := func(label string) bool {
		pressed := gui.Button(rl.Rectangle{X: x, Y: y, Width: panelW, Height: buttonH}, label)
		y += buttonH + buttonGap
		return pressed
	}

	pauseLabel := "Pause"
	if hud.Paused {
		pauseLabel = "Resume"
	}
	a.TogglePause = button(pauseLabel)
	a.Feed = button("Feed")
	a.AddFish = button("Add Fish")
	a.CycleTheme = button(fmt.Sprintf("Theme: %s", hud.Theme))
	a.ResetView = button("Reset View")
	a.Screenshot = button("Screenshot")

	y += 8
	status := fmt.Sprintf("fps %d\ntick %d\nfish %d\nsprites %d",
		hud.FPS, hud.Tick, hud.Population, hud.CacheReady)
	if !hud.Primed {
		status = "no frames yet"
	}
	rl.DrawText(status, int32(x), int32(y), 14, rl.RayWhite)

	return a
}

// DrawInspector renders the selected fish's trait record in the bottom-left
// corner.
func DrawInspector(screenH int32, e frame.Entity, rec genome.TraitRecord, known bool) {
	const w, h = 250, 150
	x := int32(10)
	y := screenH - h - 10

	rl.DrawRectangle(x, y, w, h, rl.Color{R: 6, G: 16, B: 30, A: 200})
	rl.DrawRectangleLines(x, y, w, h, rl.Color{R: 120, G: 160, B: 190, A: 255})

	tx := x + 10
	ty := y + 8
	line := func(s string) {
		rl.DrawText(s, tx, ty, 14, rl.RayWhite)
		ty += 18
	}

	line(fmt.Sprintf("fish #%d  %s", e.ID, e.Behavior))
	if e.Infected {
		rl.DrawText("infected", x+w-70, y+8, 14, rl.Color{R: 140, G: 230, B: 120, A: 255})
	}
	if !known {
		line(fmt.Sprintf("trait record %d (unknown)", e.TraitID))
		return
	}

	sex := "male"
	if rec.Sex == genome.Female {
		sex = "female"
	}
	line(fmt.Sprintf("record %d  gen %d  %s", rec.ID, rec.Generation, sex))
	line(fmt.Sprintf("hue %.0f  sat %.2f  light %.2f", rec.BaseHue, rec.Saturation, rec.Lightness))
	line(fmt.Sprintf("body %.2f x %.2f  tail %.2f", rec.BodyLength, rec.BodyWidth, rec.TailSize))
	line(fmt.Sprintf("pattern %s %.2f  x%.2f", rec.Pattern.Kind, rec.Pattern.Value, rec.PatternIntensity))
	line(fmt.Sprintf("depth %.2f  speed gene %.2f", e.Z, rec.Speed))
}
