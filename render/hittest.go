// Package render composites authoritative frames into the displayed scene:
// background, decorations, fish sprites, effects, and selection feedback.
package render

// Depth bands select which pre-rendered sprite scale an entity uses.
const (
	BandBack = iota
	BandMid
	BandFront
)

// BandForZ maps a depth value in [0,1] to a sprite band. The tank is split
// into three equal slabs; out-of-range depths clamp to the nearest band.
func BandForZ(z float32) int {
	switch {
	case z < 1.0/3.0:
		return BandBack
	case z < 2.0/3.0:
		return BandMid
	default:
		return BandFront
	}
}

// Candidate is one pickable entity at its interpolated world position.
type Candidate struct {
	ID   uint32
	X, Y float32
}

// HitTester resolves clicks to entities purely by position. Radius is in
// world units; callers divide the configured screen-pixel radius by the
// current zoom so picking feels the same at every magnification.
type HitTester struct{}

// Pick returns the candidate nearest to (wx, wy) within radius. Ties go to
// the first candidate encountered at the minimal distance.
func (HitTester) Pick(cands []Candidate, wx, wy, radius float32) (uint32, bool) {
	bestID := uint32(0)
	bestDist := float64(radius) * float64(radius)
	found := false

	for i := range cands {
		dx := float64(cands[i].X - wx)
		dy := float64(cands[i].Y - wy)
		d := dx*dx + dy*dy
		if d <= bestDist && (!found || d < bestDist) {
			bestID = cands[i].ID
			bestDist = d
			found = true
		}
	}
	return bestID, found
}

// PickAll returns every candidate within radius, nearest first. Used by the
// hover path, which wants to skip the selected entity.
func (HitTester) PickAll(cands []Candidate, wx, wy, radius float32) []uint32 {
	type hit struct {
		id uint32
		d  float64
	}
	r2 := float64(radius) * float64(radius)
	var hits []hit
	for i := range cands {
		dx := float64(cands[i].X - wx)
		dy := float64(cands[i].Y - wy)
		if d := dx*dx + dy*dy; d <= r2 {
			hits = append(hits, hit{cands[i].ID, d})
		}
	}
	// Insertion sort: hit lists are tiny.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].d < hits[j-1].d; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]uint32, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}
