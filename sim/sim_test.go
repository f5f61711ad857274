package sim

import (
	"testing"

	"github.com/saagar210/DeepTank/config"
)

func testSim(t *testing.T, founders int) *Sim {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return New(cfg, 42, founders)
}

func TestStepTicksMonotonically(t *testing.T) {
	s := testSim(t, 5)

	var last uint64
	for i := 0; i < 10; i++ {
		f := s.Step(1.0 / 30)
		if f.Tick <= last {
			t.Fatalf("tick %d not greater than previous %d", f.Tick, last)
		}
		last = f.Tick
	}
}

func TestEntitiesStayInTank(t *testing.T) {
	s := testSim(t, 12)
	w := s.cfg.Derived.TankW32
	h := s.cfg.Derived.TankH32

	for i := 0; i < 300; i++ {
		f := s.Step(1.0 / 30)
		for _, e := range f.Entities {
			if e.X < 0 || e.X > w || e.Y < 0 || e.Y > h {
				t.Fatalf("entity %d escaped tank at (%f,%f)", e.ID, e.X, e.Y)
			}
			if e.Z < 0 || e.Z > 1 {
				t.Fatalf("entity %d depth out of range: %f", e.ID, e.Z)
			}
		}
	}
}

func TestEveryEntityHasResolvableGenome(t *testing.T) {
	s := testSim(t, 8)

	for i := 0; i < 120; i++ {
		f := s.Step(1.0 / 30)
		for _, e := range f.Entities {
			if _, ok := s.Genome(e.TraitID); !ok {
				t.Fatalf("entity %d references unknown trait record %d", e.ID, e.TraitID)
			}
		}
	}
}

func TestFoundersAreDistinctRecords(t *testing.T) {
	s := testSim(t, 6)
	f := s.Step(1.0 / 30)

	seen := make(map[uint32]bool)
	for _, e := range f.Entities {
		seen[e.TraitID] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct trait records among founders, got %d", len(seen))
	}
}

func TestRequestFeedScattersFood(t *testing.T) {
	s := testSim(t, 2)

	f := s.Step(1.0 / 30)
	if len(f.Food) != 0 {
		t.Fatalf("expected no food initially, got %d", len(f.Food))
	}

	s.RequestFeed()
	f = s.Step(1.0 / 30)
	if len(f.Food) == 0 {
		t.Error("expected food after feed request")
	}
}

func TestRequestSpawnGrowsPopulation(t *testing.T) {
	s := testSim(t, 3)
	before := s.Population()

	s.RequestSpawn()
	s.Step(1.0 / 30)
	if s.Population() != before+1 {
		t.Errorf("expected population %d, got %d", before+1, s.Population())
	}
}

func TestPopulationReadableWhileStepping(t *testing.T) {
	s := testSim(t, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.RequestSpawn()
			s.Step(1.0 / 30)
		}
	}()

	// Poll from another goroutine the way the render loop does. Run with
	// -race to catch unsynchronized access to the counter.
	for {
		select {
		case <-done:
			if s.Population() < 10 {
				t.Errorf("expected at least the founder population, got %d", s.Population())
			}
			return
		default:
			if p := s.Population(); p < 0 {
				t.Fatalf("impossible population %d", p)
			}
		}
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	s := testSim(t, 4)

	a := s.Step(1.0 / 30)
	a.Entities[0].X = -9999

	b := s.Step(1.0 / 30)
	if b.Entities[0].X == -9999 {
		t.Error("mutating an old snapshot leaked into the next one")
	}
}

func TestDecorationsPresentAndStatic(t *testing.T) {
	s := testSim(t, 2)

	a := s.Step(1.0 / 30)
	b := s.Step(1.0 / 30)
	if len(a.Decorations) == 0 {
		t.Fatal("expected seeded decorations")
	}
	if len(a.Decorations) != len(b.Decorations) {
		t.Error("decoration count changed between frames")
	}
	for i := range a.Decorations {
		if a.Decorations[i] != b.Decorations[i] {
			t.Errorf("decoration %d moved between frames", i)
		}
	}
}
