package frame

import (
	"math"
	"testing"
	"time"
)

func makeFrame(tick uint64, entities ...Entity) *Frame {
	return &Frame{Tick: tick, Entities: entities}
}

func TestPositionOfEndpoints(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)
	now := time.Now()

	it.Update(makeFrame(1, Entity{ID: 5, X: 100, Y: 200}), now)
	it.Update(makeFrame(2, Entity{ID: 5, X: 140, Y: 160}), now)

	x, y, ok := it.PositionOf(5, 0)
	if !ok || x != 100 || y != 200 {
		t.Errorf("alpha=0: expected previous position (100,200), got (%f,%f) ok=%v", x, y, ok)
	}

	x, y, ok = it.PositionOf(5, 1)
	if !ok || x != 140 || y != 160 {
		t.Errorf("alpha=1: expected current position (140,160), got (%f,%f) ok=%v", x, y, ok)
	}
}

func TestPositionOfIsLinear(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)
	now := time.Now()

	it.Update(makeFrame(1, Entity{ID: 5, X: 0, Y: 0}), now)
	it.Update(makeFrame(2, Entity{ID: 5, X: 100, Y: 50}), now)

	for _, alpha := range []float32{0.1, 0.25, 0.5, 0.75, 0.9} {
		x, y, ok := it.PositionOf(5, alpha)
		if !ok {
			t.Fatalf("alpha=%f: entity not found", alpha)
		}
		wantX := 100 * alpha
		wantY := 50 * alpha
		if math.Abs(float64(x-wantX)) > 0.001 || math.Abs(float64(y-wantY)) > 0.001 {
			t.Errorf("alpha=%f: expected (%f,%f), got (%f,%f)", alpha, wantX, wantY, x, y)
		}
	}
}

func TestNewEntityDoesNotInterpolate(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)
	now := time.Now()

	it.Update(makeFrame(1, Entity{ID: 1, X: 0, Y: 0}), now)
	// ID 9 appears only in the second frame.
	it.Update(makeFrame(2, Entity{ID: 1, X: 10, Y: 10}, Entity{ID: 9, X: 300, Y: 400}), now)

	for _, alpha := range []float32{0, 0.5, 1} {
		x, y, ok := it.PositionOf(9, alpha)
		if !ok || x != 300 || y != 400 {
			t.Errorf("alpha=%f: expected constant (300,400) for new entity, got (%f,%f) ok=%v",
				alpha, x, y, ok)
		}
	}
}

func TestRemovedEntityNotFound(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)
	now := time.Now()

	it.Update(makeFrame(1, Entity{ID: 1, X: 0, Y: 0}), now)
	it.Update(makeFrame(2), now)

	if _, _, ok := it.PositionOf(1, 0.5); ok {
		t.Error("expected entity absent from current frame to report not found")
	}
}

func TestStaleTickDropped(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)
	now := time.Now()

	it.Update(makeFrame(5, Entity{ID: 1, X: 1, Y: 1}), now)
	it.Update(makeFrame(6, Entity{ID: 1, X: 2, Y: 2}), now)

	// Duplicate and lower ticks must not disturb interpolation state.
	it.Update(makeFrame(6, Entity{ID: 1, X: 99, Y: 99}), now)
	it.Update(makeFrame(3, Entity{ID: 1, X: 99, Y: 99}), now)

	if it.Current().Tick != 6 {
		t.Errorf("expected current tick 6, got %d", it.Current().Tick)
	}
	x, y, _ := it.PositionOf(1, 1)
	if x != 2 || y != 2 {
		t.Errorf("expected current position (2,2) preserved, got (%f,%f)", x, y)
	}
	x, y, _ = it.PositionOf(1, 0)
	if x != 1 || y != 1 {
		t.Errorf("expected previous position (1,1) preserved, got (%f,%f)", x, y)
	}
}

func TestAlpha(t *testing.T) {
	it := NewInterpolator(100 * time.Millisecond)
	base := time.Now()

	it.Update(makeFrame(1), base)

	if a := it.Alpha(base); a != 0 {
		t.Errorf("expected alpha 0 at update time, got %f", a)
	}
	if a := it.Alpha(base.Add(50 * time.Millisecond)); math.Abs(float64(a-0.5)) > 0.001 {
		t.Errorf("expected alpha 0.5 at half period, got %f", a)
	}
	if a := it.Alpha(base.Add(250 * time.Millisecond)); a != 1 {
		t.Errorf("expected alpha clamped to 1 past one period, got %f", a)
	}
}

func TestUnprimed(t *testing.T) {
	it := NewInterpolator(33 * time.Millisecond)

	if it.Primed() {
		t.Error("expected unprimed before first frame")
	}
	if _, _, ok := it.PositionOf(1, 0.5); ok {
		t.Error("expected no positions before first frame")
	}
	if a := it.Alpha(time.Now()); a != 1 {
		t.Errorf("expected alpha 1 before first frame, got %f", a)
	}
}

func TestActiveIDs(t *testing.T) {
	f := makeFrame(1,
		Entity{ID: 1, TraitID: 10},
		Entity{ID: 2, TraitID: 11},
		Entity{ID: 3, TraitID: 10}, // shared genome
	)

	ids := f.ActiveIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct trait ids, got %d", len(ids))
	}
	for _, want := range []uint32{10, 11} {
		if _, ok := ids[want]; !ok {
			t.Errorf("expected trait id %d in active set", want)
		}
	}
}
