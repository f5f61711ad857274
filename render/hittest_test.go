package render

import "testing"

func TestPickWithinRadius(t *testing.T) {
	var ht HitTester
	cands := []Candidate{{ID: 1, X: 100, Y: 100}}
	const radius = 28

	// Click exactly radius away hits.
	id, ok := ht.Pick(cands, 100+radius, 100, radius)
	if !ok || id != 1 {
		t.Errorf("expected hit at exact radius, got id=%d ok=%v", id, ok)
	}

	// One pixel further misses.
	if _, ok := ht.Pick(cands, 100+radius+1, 100, radius); ok {
		t.Error("expected miss just outside radius")
	}
}

func TestPickNearestWins(t *testing.T) {
	var ht HitTester
	cands := []Candidate{
		{ID: 1, X: 100, Y: 100},
		{ID: 2, X: 110, Y: 100},
		{ID: 3, X: 130, Y: 100},
	}

	id, ok := ht.Pick(cands, 108, 100, 50)
	if !ok || id != 2 {
		t.Errorf("expected nearest entity 2, got id=%d ok=%v", id, ok)
	}
}

func TestPickEmpty(t *testing.T) {
	var ht HitTester
	if _, ok := ht.Pick(nil, 0, 0, 100); ok {
		t.Error("expected no hit with no candidates")
	}
}

func TestPickTieGoesToFirst(t *testing.T) {
	var ht HitTester
	cands := []Candidate{
		{ID: 5, X: 90, Y: 100},
		{ID: 6, X: 110, Y: 100},
	}

	id, ok := ht.Pick(cands, 100, 100, 28)
	if !ok || id != 5 {
		t.Errorf("expected tie to go to first candidate, got id=%d ok=%v", id, ok)
	}
}

func TestPickAllSortedByDistance(t *testing.T) {
	var ht HitTester
	cands := []Candidate{
		{ID: 1, X: 120, Y: 100},
		{ID: 2, X: 105, Y: 100},
		{ID: 3, X: 500, Y: 500},
	}

	hits := ht.PickAll(cands, 100, 100, 28)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0] != 2 || hits[1] != 1 {
		t.Errorf("expected nearest-first order [2 1], got %v", hits)
	}
}

func TestBandForZ(t *testing.T) {
	cases := []struct {
		z    float32
		want int
	}{
		{0.0, BandBack},
		{0.10, BandBack},
		{0.50, BandMid},
		{0.90, BandFront},
		{1.0, BandFront},
		{-0.5, BandBack},
		{1.5, BandFront},
	}
	for _, c := range cases {
		if got := BandForZ(c.z); got != c.want {
			t.Errorf("BandForZ(%f) = %d, want %d", c.z, got, c.want)
		}
	}

	// Band boundaries are half-open: exactly one third is mid.
	if BandForZ(float32(1.0/3.0)) != BandMid {
		t.Error("expected z=1/3 in mid band")
	}
	if BandForZ(float32(2.0/3.0)) != BandFront {
		t.Error("expected z=2/3 in front band")
	}
}
