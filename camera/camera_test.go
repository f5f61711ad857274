package camera

import (
	"math"
	"testing"
)

func newTestViewport() *Viewport {
	return New(1200, 800, 1200, 800, 0.5, 4.0, 1.1)
}

func TestNewShowsWholeTank(t *testing.T) {
	v := newTestViewport()

	if v.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", v.Zoom)
	}
	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	if minX != 0 || minY != 0 || maxX != 1200 || maxY != 800 {
		t.Errorf("expected full tank visible, got (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestMinZoomRaisedToFit(t *testing.T) {
	// Configured min 0.5 would show 2400x1600 world units on a 1200x800
	// screen, exposing area outside the 1200x800 tank.
	v := newTestViewport()
	if v.MinZoom != 1.0 {
		t.Errorf("expected effective min zoom 1.0, got %f", v.MinZoom)
	}

	v.SetZoom(0.25)
	if v.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", v.Zoom)
	}
}

func TestWorldScreenRoundTrip(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(2.0)
	v.Pan(-37, 19)

	cases := [][2]float32{{0, 0}, {600, 400}, {1199, 799}, {123.5, 678.25}}
	for _, c := range cases {
		sx, sy := v.WorldToScreen(c[0], c[1])
		wx, wy := v.ScreenToWorld(sx, sy)
		if math.Abs(float64(wx-c[0])) > 0.001 || math.Abs(float64(wy-c[1])) > 0.001 {
			t.Errorf("round trip (%f,%f) -> (%f,%f)", c[0], c[1], wx, wy)
		}
	}
}

func TestZoomClampedToMax(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(100)
	if v.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", v.Zoom)
	}
}

func TestPanClampedToTank(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(2.0)

	// Hard pan toward the top-left: the tank's top-left corner must not
	// move past the screen origin.
	v.Pan(10000, 10000)
	if v.PanX != 0 || v.PanY != 0 {
		t.Errorf("expected pan clamped to (0,0), got (%f,%f)", v.PanX, v.PanY)
	}

	// Hard pan toward the bottom-right: bottom-right world corner must
	// land exactly on the screen's bottom-right.
	v.Pan(-10000, -10000)
	wantX := v.ScreenW - v.WorldW*v.Zoom
	wantY := v.ScreenH - v.WorldH*v.Zoom
	if v.PanX != wantX || v.PanY != wantY {
		t.Errorf("expected pan clamped to (%f,%f), got (%f,%f)", wantX, wantY, v.PanX, v.PanY)
	}

	// Never expose area outside the tank at any clamped pan.
	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	if minX < 0 || minY < 0 || maxX > v.WorldW+0.001 || maxY > v.WorldH+0.001 {
		t.Errorf("visible bounds outside tank: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestZoomAtKeepsCursorPointFixed(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(2.0)
	v.Pan(-300, -200)

	const sx, sy = 400, 300
	wx, wy := v.ScreenToWorld(sx, sy)

	v.ZoomAt(sx, sy, 1)

	gx, gy := v.ScreenToWorld(sx, sy)
	if math.Abs(float64(gx-wx)) > 0.001 || math.Abs(float64(gy-wy)) > 0.001 {
		t.Errorf("world point under cursor moved: (%f,%f) -> (%f,%f)", wx, wy, gx, gy)
	}
}

func TestZoomAtWheelStep(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(2.0)

	v.ZoomAt(600, 400, 1)
	if math.Abs(float64(v.Zoom-2.2)) > 0.001 {
		t.Errorf("expected zoom 2.2 after one notch, got %f", v.Zoom)
	}

	v.ZoomAt(600, 400, -1)
	if math.Abs(float64(v.Zoom-2.0)) > 0.001 {
		t.Errorf("expected zoom back to 2.0, got %f", v.Zoom)
	}
}

func TestReset(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(3.0)
	v.Pan(-500, -300)

	v.Reset()

	if v.Zoom != 1.0 || v.PanX != 0 || v.PanY != 0 {
		t.Errorf("expected reset to zoom 1 pan (0,0), got zoom=%f pan=(%f,%f)",
			v.Zoom, v.PanX, v.PanY)
	}
}

func TestResizeReclamps(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(2.0)
	v.Pan(-10000, -10000)

	v.Resize(1600, 1000)

	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	if minX < -0.001 || minY < -0.001 || maxX > v.WorldW+0.001 || maxY > v.WorldH+0.001 {
		t.Errorf("visible bounds outside tank after resize: (%f,%f)-(%f,%f)",
			minX, minY, maxX, maxY)
	}
}

func TestIsVisible(t *testing.T) {
	v := newTestViewport()
	v.SetZoom(4.0)
	// At zoom 4 the view shows a 300x200 world window; default clamp puts
	// the window wherever SetZoom centered it, so reset pan to origin.
	v.PanX, v.PanY = 0, 0
	v.clampPan()

	if !v.IsVisible(150, 100, 10) {
		t.Error("expected point inside window to be visible")
	}
	if v.IsVisible(600, 400, 10) {
		t.Error("expected far point to be culled")
	}
	if !v.IsVisible(305, 100, 10) {
		t.Error("expected point within radius of the edge to be visible")
	}
}
