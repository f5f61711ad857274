package sprite

import (
	"image"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/saagar210/DeepTank/genome"
)

// Renderer rasterizes one trait record into its three depth-band images.
type Renderer interface {
	RenderBands(rec genome.TraitRecord) [3]*image.RGBA
}

// Set holds the three depth-band sprites for one trait record. GPU textures
// are uploaded lazily on first draw so generation can run off the render
// thread; Release must run on the render thread.
type Set struct {
	Images [3]*image.RGBA

	tex    [3]rl.Texture2D
	loaded [3]bool
}

// Texture returns the GPU texture for the given band, uploading it on first
// use. Render thread only.
func (s *Set) Texture(band int) rl.Texture2D {
	if !s.loaded[band] {
		img := rl.NewImageFromImage(s.Images[band])
		s.tex[band] = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		s.loaded[band] = true
	}
	return s.tex[band]
}

// Release unloads any uploaded textures. Render thread only.
func (s *Set) Release() {
	for i := range s.tex {
		if s.loaded[i] {
			rl.UnloadTexture(s.tex[i])
			s.loaded[i] = false
		}
	}
}

type result struct {
	id     uint32
	images [3]*image.RGBA
}

// Cache generates sprite sets on a single worker goroutine and serves them to
// the render thread. All maps are touched only by the render thread; the
// worker communicates exclusively over channels, so no locks are needed and
// each record generates at most once while wanted.
//
// States per ID: absent, pending (wanted, not ready), ready (in entries).
// inflight tracks jobs already handed to the worker so Evict of a pending ID
// can simply forget it and discard the result when it drains.
type Cache struct {
	gen Renderer

	entries  map[uint32]*Set
	pending  map[uint32]struct{}
	inflight map[uint32]struct{}

	jobs    chan genome.TraitRecord
	results chan result
	quit    chan struct{}

	// Generated counts completed generations, including discarded ones.
	Generated uint64
	// Dropped counts Ensure calls deferred because the job queue was full.
	Dropped uint64
}

// NewCache starts the generation worker. queue bounds both the job and
// result channels.
func NewCache(gen Renderer, queue int) *Cache {
	if queue <= 0 {
		queue = 64
	}
	c := &Cache{
		gen:      gen,
		entries:  make(map[uint32]*Set),
		pending:  make(map[uint32]struct{}),
		inflight: make(map[uint32]struct{}),
		jobs:     make(chan genome.TraitRecord, queue),
		results:  make(chan result, queue),
		quit:     make(chan struct{}),
	}
	go c.worker()
	return c
}

func (c *Cache) worker() {
	for {
		select {
		case rec := <-c.jobs:
			c.results <- result{id: rec.ID, images: c.gen.RenderBands(rec)}
		case <-c.quit:
			return
		}
	}
}

// Ensure requests that the record's sprites exist. Ready and already-queued
// records are no-ops; a full job queue defers the request to a later Ensure
// rather than blocking the render thread.
func (c *Cache) Ensure(rec genome.TraitRecord) {
	id := rec.ID
	if _, ok := c.entries[id]; ok {
		return
	}
	c.pending[id] = struct{}{}
	if _, queued := c.inflight[id]; queued {
		// A job for this id is already with the worker. That covers both a
		// plain repeat Ensure and an id evicted mid-flight and wanted again:
		// records are write-once per id, so the pending result still serves.
		return
	}

	select {
	case c.jobs <- rec:
		c.inflight[id] = struct{}{}
	default:
		c.Dropped++
	}
}

// Collect drains finished generations into the ready map. Results for IDs
// evicted while in flight are discarded. Returns the number of sets
// installed. Render thread, once per frame.
func (c *Cache) Collect() int {
	installed := 0
	for {
		select {
		case res := <-c.results:
			c.Generated++
			delete(c.inflight, res.id)
			if _, wanted := c.pending[res.id]; wanted {
				delete(c.pending, res.id)
				c.entries[res.id] = &Set{Images: res.images}
				installed++
			}
		default:
			return installed
		}
	}
}

// Get returns the ready sprite set for a trait record ID.
func (c *Cache) Get(id uint32) (*Set, bool) {
	s, ok := c.entries[id]
	return s, ok
}

// Has reports whether the ID is ready.
func (c *Cache) Has(id uint32) bool {
	_, ok := c.entries[id]
	return ok
}

// Pending reports whether the ID is wanted but not yet ready.
func (c *Cache) Pending(id uint32) bool {
	_, ok := c.pending[id]
	return ok
}

// Len returns the number of ready sets.
func (c *Cache) Len() int { return len(c.entries) }

// Evict drops every ready and pending ID not in the active set. In-flight
// work for forgotten IDs finishes on the worker and is discarded by Collect.
func (c *Cache) Evict(active map[uint32]struct{}) int {
	removed := 0
	for id, set := range c.entries {
		if _, keep := active[id]; !keep {
			set.Release()
			delete(c.entries, id)
			removed++
		}
	}
	for id := range c.pending {
		if _, keep := active[id]; !keep {
			delete(c.pending, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("sprite cache evicted", "removed", removed, "remaining", len(c.entries))
	}
	return removed
}

// Close stops the worker. Sets already handed out stay valid; Release them
// separately.
func (c *Cache) Close() {
	close(c.quit)
}
