// Package camera provides the pan/zoom viewport mapping tank coordinates to
// screen coordinates.
package camera

import "math"

// Viewport maps world (tank) coordinates to screen pixels. At zoom 1 with the
// default config, one world unit is one pixel and the tank fills the screen.
// Pan is a screen-space offset, clamped so the visible rectangle never leaves
// the tank.
type Viewport struct {
	// PanX, PanY is the screen position of the tank's top-left corner.
	PanX, PanY float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Screen dimensions in pixels
	ScreenW, ScreenH float32

	// World (tank) dimensions in world units
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// WheelStep is the multiplicative zoom ratio per wheel notch.
	WheelStep float32
}

// New creates a viewport at zoom 1 showing the whole tank.
// minZoom is raised as needed so the view can never expose area outside the
// tank: at zoom Z the visible world area is (screenW/Z, screenH/Z).
func New(screenW, screenH, worldW, worldH, minZoom, maxZoom, wheelStep float32) *Viewport {
	v := &Viewport{
		Zoom:      1.0,
		ScreenW:   screenW,
		ScreenH:   screenH,
		WorldW:    worldW,
		WorldH:    worldH,
		MinZoom:   minZoom,
		MaxZoom:   maxZoom,
		WheelStep: wheelStep,
	}
	v.raiseMinZoom()
	v.clampZoom()
	v.clampPan()
	return v
}

// raiseMinZoom lifts MinZoom to the smallest zoom at which the viewport still
// fits inside the tank on both axes.
func (v *Viewport) raiseMinZoom() {
	fitX := v.ScreenW / v.WorldW
	fitY := v.ScreenH / v.WorldH
	if fitX > v.MinZoom {
		v.MinZoom = fitX
	}
	if fitY > v.MinZoom {
		v.MinZoom = fitY
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float32) (sx, sy float32) {
	return wx*v.Zoom + v.PanX, wy*v.Zoom + v.PanY
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	return (sx - v.PanX) / v.Zoom, (sy - v.PanY) / v.Zoom
}

// Pan moves the view by a screen-space delta, then clamps to tank bounds.
func (v *Viewport) Pan(dx, dy float32) {
	v.PanX += dx
	v.PanY += dy
	v.clampPan()
}

// ZoomAt zooms by WheelStep^wheel toward the screen point (sx, sy): the world
// point under the cursor stays put while everything else scales around it.
func (v *Viewport) ZoomAt(sx, sy, wheel float32) {
	if wheel == 0 {
		return
	}
	old := v.Zoom
	v.Zoom = old * float32(math.Pow(float64(v.WheelStep), float64(wheel)))
	v.clampZoom()

	// Recompute pan so (sx, sy) maps to the same world point.
	ratio := v.Zoom / old
	v.PanX = sx - (sx-v.PanX)*ratio
	v.PanY = sy - (sy-v.PanY)*ratio
	v.clampPan()
}

// SetZoom sets the zoom level around the screen center, clamped to min/max.
func (v *Viewport) SetZoom(zoom float32) {
	old := v.Zoom
	v.Zoom = zoom
	v.clampZoom()
	if old != 0 {
		ratio := v.Zoom / old
		cx, cy := v.ScreenW/2, v.ScreenH/2
		v.PanX = cx - (cx-v.PanX)*ratio
		v.PanY = cy - (cy-v.PanY)*ratio
	}
	v.clampPan()
}

// Reset restores zoom 1 and the default pan.
func (v *Viewport) Reset() {
	v.Zoom = 1.0
	v.clampZoom()
	v.PanX = 0
	v.PanY = 0
	v.clampPan()
}

// Resize updates screen dimensions and re-clamps.
func (v *Viewport) Resize(screenW, screenH float32) {
	if screenW == v.ScreenW && screenH == v.ScreenH {
		return
	}
	v.ScreenW = screenW
	v.ScreenH = screenH
	v.raiseMinZoom()
	v.clampZoom()
	v.clampPan()
}

// VisibleWorldBounds returns the world-coordinate rectangle currently shown.
func (v *Viewport) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	minX, minY = v.ScreenToWorld(0, 0)
	maxX, maxY = v.ScreenToWorld(v.ScreenW, v.ScreenH)
	return
}

// IsVisible returns true if a circle at (wx, wy) with the given world radius
// could be on screen (conservative culling check).
func (v *Viewport) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX &&
		wy+radius >= minY && wy-radius <= maxY
}

func (v *Viewport) clampZoom() {
	if v.Zoom < v.MinZoom {
		v.Zoom = v.MinZoom
	}
	if v.Zoom > v.MaxZoom {
		v.Zoom = v.MaxZoom
	}
}

// clampPan constrains pan per axis to [screen - zoom*world, 0] so no area
// outside the tank is exposed. If the scaled tank is smaller than the screen
// on an axis (possible right after a resize, before zoom re-clamps), the tank
// is centered instead.
func (v *Viewport) clampPan() {
	v.PanX = clampAxis(v.PanX, v.ScreenW, v.WorldW*v.Zoom)
	v.PanY = clampAxis(v.PanY, v.ScreenH, v.WorldH*v.Zoom)
}

func clampAxis(pan, screen, scaledWorld float32) float32 {
	lo := screen - scaledWorld
	if lo >= 0 {
		return lo / 2
	}
	if pan < lo {
		return lo
	}
	if pan > 0 {
		return 0
	}
	return pan
}
