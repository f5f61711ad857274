package frame

import (
	"log/slog"
	"time"
)

// Interpolator holds the two most recent frames and produces per-entity
// positions blended between them. Snapshots arrive at the nominal tick rate
// while rendering runs faster; the blend fraction (alpha) hides the gap.
type Interpolator struct {
	prev *Frame
	cur  *Frame

	prevIndex map[uint32]int // entity id -> index into prev.Entities

	lastUpdate time.Time
	tickDur    time.Duration
}

// NewInterpolator creates an interpolator for the given nominal inter-frame
// period (e.g. 33.3ms for a 30 Hz simulation).
func NewInterpolator(tickDur time.Duration) *Interpolator {
	return &Interpolator{tickDur: tickDur}
}

// Update shifts the current frame into the previous slot and stores f as
// current. Frames must arrive with strictly increasing ticks; a stale or
// duplicate tick is a producer contract violation and is logged and dropped
// without touching interpolation state.
func (it *Interpolator) Update(f *Frame, now time.Time) {
	if it.cur != nil && f.Tick <= it.cur.Tick {
		slog.Warn("dropping stale frame", "tick", f.Tick, "current", it.cur.Tick)
		return
	}

	it.prev = it.cur
	it.cur = f
	it.lastUpdate = now

	// Rebuild the previous-frame index once per update so PositionOf is O(1).
	if it.prev != nil {
		if it.prevIndex == nil {
			it.prevIndex = make(map[uint32]int, len(it.prev.Entities))
		} else {
			clear(it.prevIndex)
		}
		for i := range it.prev.Entities {
			it.prevIndex[it.prev.Entities[i].ID] = i
		}
	}
}

// Current returns the newest frame, or nil before the first update.
func (it *Interpolator) Current() *Frame {
	return it.cur
}

// Primed reports whether at least one frame has arrived.
func (it *Interpolator) Primed() bool {
	return it.cur != nil
}

// Alpha returns the blend fraction for the given render time: 0 right after a
// frame arrived, 1 once a full nominal tick period has elapsed. Clamped to 1
// so a late frame holds the last authoritative position instead of
// extrapolating.
func (it *Interpolator) Alpha(now time.Time) float32 {
	if it.cur == nil || it.tickDur <= 0 {
		return 1
	}
	a := float32(now.Sub(it.lastUpdate)) / float32(it.tickDur)
	if a > 1 {
		return 1
	}
	if a < 0 {
		return 0
	}
	return a
}

// PositionOf returns the interpolated position of an entity present in the
// current frame. Entities absent from the previous frame (newly appeared) sit
// at their current position for every alpha; there is no phantom prior
// position to blend from.
func (it *Interpolator) PositionOf(id uint32, alpha float32) (x, y float32, ok bool) {
	if it.cur == nil {
		return 0, 0, false
	}
	cur, ok := it.cur.EntityByID(id)
	if !ok {
		return 0, 0, false
	}
	if it.prev != nil {
		if i, exists := it.prevIndex[id]; exists {
			p := &it.prev.Entities[i]
			return p.X + (cur.X-p.X)*alpha, p.Y + (cur.Y-p.Y)*alpha, true
		}
	}
	return cur.X, cur.Y, true
}

// LerpEntity blends a single entity between previous and current state.
// Used by the compositor's draw loop, which already holds the current entity
// and only needs the previous position looked up.
func (it *Interpolator) LerpEntity(cur *Entity, alpha float32) (x, y float32) {
	if it.prev != nil {
		if i, exists := it.prevIndex[cur.ID]; exists {
			p := &it.prev.Entities[i]
			return p.X + (cur.X-p.X)*alpha, p.Y + (cur.Y-p.Y)*alpha
		}
	}
	return cur.X, cur.Y
}
