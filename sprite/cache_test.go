package sprite

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/saagar210/DeepTank/genome"
)

type countingRenderer struct {
	mu    sync.Mutex
	calls map[uint32]int
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{calls: make(map[uint32]int)}
}

func (r *countingRenderer) RenderBands(rec genome.TraitRecord) [3]*image.RGBA {
	r.mu.Lock()
	r.calls[rec.ID]++
	r.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	return [3]*image.RGBA{img, img, img}
}

func (r *countingRenderer) count(id uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

// gatedRenderer blocks each generation until released, letting tests hold a
// job in flight.
type gatedRenderer struct {
	release chan struct{}
}

func (r *gatedRenderer) RenderBands(rec genome.TraitRecord) [3]*image.RGBA {
	<-r.release
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	return [3]*image.RGBA{img, img, img}
}

// collectUntil polls Collect until n sets have been installed or the
// deadline passes.
func collectUntil(t *testing.T, c *Cache, n int) {
	t.Helper()
	total := 0
	deadline := time.Now().Add(2 * time.Second)
	for total < n {
		total += c.Collect()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d sets, got %d", n, total)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEnsureGeneratesOnce(t *testing.T) {
	r := newCountingRenderer()
	c := NewCache(r, 16)
	defer c.Close()

	rec := genome.TraitRecord{ID: 1}
	c.Ensure(rec)
	c.Ensure(rec)
	c.Ensure(rec)

	collectUntil(t, c, 1)

	if !c.Has(1) {
		t.Fatal("expected set ready after collect")
	}
	if got := r.count(1); got != 1 {
		t.Errorf("expected exactly one generation, got %d", got)
	}

	// Ready entries never regenerate.
	c.Ensure(rec)
	time.Sleep(10 * time.Millisecond)
	c.Collect()
	if got := r.count(1); got != 1 {
		t.Errorf("expected no regeneration of ready entry, got %d calls", got)
	}
}

func TestEvictRemovesInactiveAndAllowsRegen(t *testing.T) {
	r := newCountingRenderer()
	c := NewCache(r, 16)
	defer c.Close()

	c.Ensure(genome.TraitRecord{ID: 1})
	c.Ensure(genome.TraitRecord{ID: 2})
	collectUntil(t, c, 2)

	removed := c.Evict(map[uint32]struct{}{1: {}})
	if removed != 1 {
		t.Errorf("expected 1 eviction, got %d", removed)
	}
	if !c.Has(1) || c.Has(2) {
		t.Errorf("expected only id 1 to survive: has1=%v has2=%v", c.Has(1), c.Has(2))
	}

	// An evicted record that reappears generates again.
	c.Ensure(genome.TraitRecord{ID: 2})
	collectUntil(t, c, 1)
	if got := r.count(2); got != 2 {
		t.Errorf("expected regeneration after evict, got %d calls", got)
	}
}

func TestEvictPendingDiscardsInFlightResult(t *testing.T) {
	r := &gatedRenderer{release: make(chan struct{})}
	c := NewCache(r, 16)
	defer c.Close()

	c.Ensure(genome.TraitRecord{ID: 7})
	if !c.Pending(7) {
		t.Fatal("expected id 7 pending while generation is gated")
	}

	// Evict with an empty active set forgets the pending request.
	c.Evict(map[uint32]struct{}{})
	if c.Pending(7) {
		t.Error("expected pending request forgotten by evict")
	}

	// Let the worker finish; the stale result must be discarded.
	close(r.release)
	deadline := time.Now().Add(2 * time.Second)
	for c.Generated == 0 {
		c.Collect()
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for gated generation to drain")
		}
		time.Sleep(time.Millisecond)
	}
	if c.Has(7) {
		t.Error("expected result for evicted id to be discarded")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestReensureAfterEvictReusesInFlightJob(t *testing.T) {
	r := &gatedRenderer{release: make(chan struct{})}
	c := NewCache(r, 16)
	defer c.Close()

	c.Ensure(genome.TraitRecord{ID: 3})

	// Evict forgets the id while its job is in flight, then a later frame
	// wants it again before the result drains.
	c.Evict(map[uint32]struct{}{})
	c.Ensure(genome.TraitRecord{ID: 3})

	close(r.release)
	collectUntil(t, c, 1)
	if !c.Has(3) {
		t.Fatal("expected re-ensured id to install from the in-flight result")
	}

	// Give a duplicate job, if one was queued, time to complete.
	time.Sleep(10 * time.Millisecond)
	c.Collect()
	if c.Generated != 1 {
		t.Errorf("expected exactly one generation for the re-ensured id, got %d", c.Generated)
	}
}

func TestCollectWithNothingPendingReturnsZero(t *testing.T) {
	c := NewCache(newCountingRenderer(), 16)
	defer c.Close()

	if n := c.Collect(); n != 0 {
		t.Errorf("expected 0 installs, got %d", n)
	}
}

func TestFullQueueDefersWithoutBlocking(t *testing.T) {
	r := &gatedRenderer{release: make(chan struct{})}
	c := NewCache(r, 1)
	defer c.Close()

	// First job occupies the worker, second fills the queue; the rest must
	// be deferred, not block.
	for id := uint32(1); id <= 5; id++ {
		c.Ensure(genome.TraitRecord{ID: id})
	}
	if c.Dropped == 0 {
		t.Error("expected deferred requests with a full queue")
	}

	close(r.release)
	// Deferred IDs become ready on a later Ensure pass, mirroring the
	// per-frame retry the compositor performs.
	deadline := time.Now().Add(2 * time.Second)
	for c.Len() < 5 {
		for id := uint32(1); id <= 5; id++ {
			c.Ensure(genome.TraitRecord{ID: id})
		}
		c.Collect()
		if time.Now().After(deadline) {
			t.Fatalf("timed out, %d of 5 ready", c.Len())
		}
		time.Sleep(time.Millisecond)
	}
}
