// Package sim is the built-in frame producer: a small ECS-backed tank
// simulation that emits authoritative snapshots at the nominal tick rate.
// It stands in for an external simulation process and doubles as the demo
// driver for the renderer.
package sim

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/saagar210/DeepTank/config"
	"github.com/saagar210/DeepTank/frame"
	"github.com/saagar210/DeepTank/genome"
)

// Position is a fish's location in tank space plus depth.
type Position struct {
	X, Y, Z float32
}

// Velocity is tank units per second.
type Velocity struct {
	VX, VY float32
}

// Identity links an ECS entity to its stable IDs.
type Identity struct {
	ID      uint32
	TraitID uint32
}

// State carries per-fish lifecycle and behavior bookkeeping.
type State struct {
	Behavior frame.Behavior
	Age      float32 // seconds alive
	Lifespan float32 // seconds until dying begins
	Timer    float32 // seconds until the next behavior change
	DyingFor float32 // countdown once dying
	Infected bool
}

const (
	maxPopulation = 60
	baseSpeed     = 45.0 // tank units per second at Speed gene 1.0
	dyingDuration = 4.0
	// One in-tank day passes every twelve real minutes.
	hoursPerSecond = 24.0 / 720.0
)

// Sim owns the ECS world and all environmental state. Step and Run mutate it
// from a single goroutine; Genome is safe to call from the render thread.
type Sim struct {
	cfg    *config.Config
	world  *ecs.World
	mapper *ecs.Map4[Position, Velocity, Identity, State]
	filter *ecs.Filter4[Position, Velocity, Identity, State]
	rng    *rand.Rand

	mu      sync.RWMutex
	genomes map[uint32]genome.TraitRecord

	nextID    uint32
	nextTrait uint32
	tick      uint64

	// pop is polled by the render thread while Run steps the world.
	pop atomic.Int32

	hour       float32
	quality    float32
	event      string
	eventTimer float32

	food        []frame.Food
	bubbles     []frame.Bubble
	decorations []frame.Decoration

	spawnRequests atomic.Int32
	feedRequests  atomic.Int32
}

// New creates a simulation seeded with a diverse founder population.
func New(cfg *config.Config, seed int64, founders int) *Sim {
	world := ecs.NewWorld()
	s := &Sim{
		cfg:     cfg,
		world:   world,
		mapper:  ecs.NewMap4[Position, Velocity, Identity, State](world),
		filter:  ecs.NewFilter4[Position, Velocity, Identity, State](world),
		rng:     rand.New(rand.NewSource(seed)),
		genomes: make(map[uint32]genome.TraitRecord),
		hour:    9.0,
		quality: 0.9,
	}
	s.placeDecorations()
	for i := 0; i < founders; i++ {
		rec := genome.RandomDiverse(s.rng, s.allocTraitID(), i, founders)
		s.storeGenome(rec)
		s.spawn(rec)
	}
	slog.Info("simulation seeded", "founders", founders, "seed", seed)
	return s
}

// Genome implements the compositor's trait lookup.
func (s *Sim) Genome(id uint32) (genome.TraitRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.genomes[id]
	return rec, ok
}

// RequestSpawn asks the sim loop to add one fish on its next step.
func (s *Sim) RequestSpawn() { s.spawnRequests.Add(1) }

// RequestFeed asks the sim loop to scatter food on its next step.
func (s *Sim) RequestFeed() { s.feedRequests.Add(1) }

// Population returns the fish count as of the last step. Safe to call
// concurrently with Run.
func (s *Sim) Population() int { return int(s.pop.Load()) }

func (s *Sim) allocTraitID() uint32 {
	s.nextTrait++
	return s.nextTrait
}

func (s *Sim) storeGenome(rec genome.TraitRecord) {
	s.mu.Lock()
	s.genomes[rec.ID] = rec
	s.mu.Unlock()
}

func (s *Sim) dropGenome(id uint32) {
	s.mu.Lock()
	delete(s.genomes, id)
	s.mu.Unlock()
}

func (s *Sim) tankW() float32 { return s.cfg.Derived.TankW32 }
func (s *Sim) tankH() float32 { return s.cfg.Derived.TankH32 }

func (s *Sim) placeDecorations() {
	w := s.tankW()
	h := s.tankH()
	kinds := []string{"rock", "plant", "plant", "rock", "plant"}
	for i, kind := range kinds {
		s.decorations = append(s.decorations, frame.Decoration{
			ID:    uint32(i + 1),
			Kind:  kind,
			X:     w * (0.1 + 0.2*float32(i)) * (0.9 + s.rng.Float32()*0.2),
			Y:     h - 4,
			Scale: 0.8 + s.rng.Float32()*0.7,
			FlipX: s.rng.Intn(2) == 0,
		})
	}
}

func (s *Sim) spawn(rec genome.TraitRecord) {
	s.nextID++
	angle := s.rng.Float64() * 2 * math.Pi
	speed := float64(rec.Speed) * baseSpeed * 0.5
	s.mapper.NewEntity(
		&Position{
			X: s.tankW() * (0.1 + s.rng.Float32()*0.8),
			Y: s.tankH() * (0.1 + s.rng.Float32()*0.8),
			Z: s.rng.Float32(),
		},
		&Velocity{
			VX: float32(math.Cos(angle) * speed),
			VY: float32(math.Sin(angle) * speed),
		},
		&Identity{ID: s.nextID, TraitID: rec.ID},
		&State{
			Behavior: frame.Swimming,
			Lifespan: (180 + s.rng.Float32()*240) * rec.LifespanFactor,
			Timer:    2 + s.rng.Float32()*6,
		},
	)
	s.pop.Add(1)
}

// spawnOffspring derives a child record from a parent with small mutations,
// giving the sprite cache genuinely new work.
func (s *Sim) spawnOffspring(parent genome.TraitRecord) {
	child := parent
	child.ID = s.allocTraitID()
	child.Generation = parent.Generation + 1
	if s.rng.Intn(2) == 0 {
		child.Sex = genome.Male
	} else {
		child.Sex = genome.Female
	}
	jitter := func(v, amount float32) float32 {
		return v + (s.rng.Float32()*2-1)*amount
	}
	child.BaseHue = jitter(child.BaseHue, 20)
	child.BodyLength = jitter(child.BodyLength, 0.15)
	child.TailSize = jitter(child.TailSize, 0.15)
	child.PatternIntensity = jitter(child.PatternIntensity, 0.1)
	if s.rng.Float32() < 0.1 {
		child.Pattern = genome.RandomPattern(s.rng)
	}
	child = child.Clamped()

	s.storeGenome(child)
	s.spawn(child)
}

// Step advances the world by dt seconds and returns the resulting snapshot.
func (s *Sim) Step(dt float32) *frame.Frame {
	s.tick++
	s.advanceEnvironment(dt)
	s.handleRequests()
	s.advanceFood(dt)
	s.advanceBubbles(dt)
	s.advanceFish(dt)
	return s.snapshot()
}

func (s *Sim) advanceEnvironment(dt float32) {
	s.hour += dt * hoursPerSecond
	if s.hour >= 24 {
		s.hour -= 24
	}
	// Quality drifts down with population pressure and recovers slowly.
	load := float32(s.pop.Load()) / maxPopulation
	s.quality += (0.95 - load*0.4 - s.quality) * dt * 0.05
	if s.quality < 0.2 {
		s.quality = 0.2
	}
	if s.quality > 1 {
		s.quality = 1
	}

	if s.eventTimer > 0 {
		s.eventTimer -= dt
		if s.eventTimer <= 0 {
			s.event = ""
		}
	} else if s.rng.Float32() < dt/120 {
		if s.rng.Intn(2) == 0 {
			s.event = "algae bloom"
		} else {
			s.event = "current surge"
		}
		s.eventTimer = 20 + s.rng.Float32()*20
		slog.Info("tank event", "event", s.event, "tick", s.tick)
	}
}

func (s *Sim) handleRequests() {
	for n := s.feedRequests.Swap(0); n > 0; n-- {
		for i := 0; i < 8; i++ {
			s.food = append(s.food, frame.Food{
				X: s.tankW() * (0.2 + s.rng.Float32()*0.6),
				Y: 8 + s.rng.Float32()*20,
			})
		}
	}
	for n := s.spawnRequests.Swap(0); n > 0; n-- {
		if int(s.pop.Load()) >= maxPopulation {
			break
		}
		rec := genome.Random(s.rng, s.allocTraitID())
		s.storeGenome(rec)
		s.spawn(rec)
	}
}

func (s *Sim) advanceFood(dt float32) {
	floor := s.tankH() - 6
	kept := s.food[:0]
	for _, f := range s.food {
		f.Y += 18 * dt
		if f.Y < floor {
			kept = append(kept, f)
		}
	}
	s.food = kept
}

func (s *Sim) advanceBubbles(dt float32) {
	if s.rng.Float32() < dt*1.5 {
		s.bubbles = append(s.bubbles, frame.Bubble{
			X:      s.tankW() * s.rng.Float32(),
			Y:      s.tankH() - 10,
			Radius: 2 + s.rng.Float32()*4,
		})
	}
	kept := s.bubbles[:0]
	for _, b := range s.bubbles {
		b.Y -= (30 + b.Radius*4) * dt
		b.X += (s.rng.Float32() - 0.5) * 10 * dt
		if b.Y > 4 {
			kept = append(kept, b)
		}
	}
	s.bubbles = kept
}

func (s *Sim) advanceFish(dt float32) {
	w := s.tankW()
	h := s.tankH()

	type removal struct {
		entity  ecs.Entity
		traitID uint32
	}
	var dead []removal
	var offspring []genome.TraitRecord
	traitHolders := make(map[uint32]int)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, id, st := query.Get()
		traitHolders[id.TraitID]++

		rec, _ := s.Genome(id.TraitID)
		st.Age += dt

		// Algae blooms spread infection; clean water clears it.
		if s.event == "algae bloom" && !st.Infected && s.rng.Float32() < dt*0.02 {
			st.Infected = true
		}
		if st.Infected && s.quality > 0.8 && s.rng.Float32() < dt*0.05 {
			st.Infected = false
		}

		if st.Behavior == frame.Dying {
			st.DyingFor += dt
			if st.DyingFor > dyingDuration {
				dead = append(dead, removal{query.Entity(), id.TraitID})
			}
			// Dying fish sink.
			vel.VX *= 0.98
			vel.VY = 12
		} else {
			if st.Age > st.Lifespan {
				st.Behavior = frame.Dying
				st.DyingFor = 0
			}
			s.steer(pos, vel, st, rec, dt)
			if st.Behavior == frame.Courting && int(s.pop.Load())+len(offspring) < maxPopulation &&
				s.rng.Float32() < dt*0.15 {
				offspring = append(offspring, rec)
			}
		}

		pos.X += vel.VX * dt
		pos.Y += vel.VY * dt
		bounce(&pos.X, &vel.VX, 10, w-10)
		bounce(&pos.Y, &vel.VY, 10, h-10)
		pos.Z += (s.rng.Float32() - 0.5) * 0.2 * dt
		if pos.Z < 0 {
			pos.Z = 0
		}
		if pos.Z > 1 {
			pos.Z = 1
		}
	}

	for _, d := range dead {
		s.world.RemoveEntity(d.entity)
		s.pop.Add(-1)
		// Drop the genome once no living fish shares it; the renderer's
		// cache then evicts the sprites on its next sweep.
		if traitHolders[d.traitID] <= 1 {
			s.dropGenome(d.traitID)
		}
	}
	for _, parent := range offspring {
		s.spawnOffspring(parent)
	}
}

// steer runs the behavior timer and nudges velocity toward the current
// behavior's movement style.
func (s *Sim) steer(pos *Position, vel *Velocity, st *State, rec genome.TraitRecord, dt float32) {
	st.Timer -= dt
	if st.Timer <= 0 {
		st.Behavior = s.nextBehavior(rec)
		st.Timer = 2 + s.rng.Float32()*8
	}

	top := float32(baseSpeed) * rec.Speed
	var target float32
	switch st.Behavior {
	case frame.Resting, frame.Satiated:
		target = top * 0.15
	case frame.Fleeing:
		target = top * 1.8
	case frame.Hunting:
		target = top * 1.3
	case frame.Foraging:
		target = top * 0.6
		// Drift toward the nearest food flake, if any.
		if fx, fy, ok := s.nearestFood(pos.X, pos.Y); ok {
			vel.VX += sign(fx-pos.X) * top * dt * 2
			vel.VY += sign(fy-pos.Y) * top * dt * 2
		}
	default:
		target = top * 0.7
	}

	// Wander: random heading nudge, then relax speed toward the target.
	vel.VX += (s.rng.Float32() - 0.5) * top * dt * 3
	vel.VY += (s.rng.Float32() - 0.5) * top * dt * 2
	speed := float32(math.Hypot(float64(vel.VX), float64(vel.VY)))
	if speed > 0.01 {
		adjust := 1 + (target-speed)/speed*dt*2
		vel.VX *= adjust
		vel.VY *= adjust
	}
}

func (s *Sim) nextBehavior(rec genome.TraitRecord) frame.Behavior {
	r := s.rng.Float32()
	switch {
	case r < 0.35:
		return frame.Swimming
	case r < 0.5:
		return frame.Foraging
	case r < 0.6:
		return frame.Resting
	case r < 0.68:
		return frame.Satiated
	case r < 0.68+rec.Aggression*0.2:
		return frame.Hunting
	case r < 0.82:
		return frame.Courting
	case r < 0.88:
		return frame.Fleeing
	default:
		return frame.Swimming
	}
}

func (s *Sim) nearestFood(x, y float32) (float32, float32, bool) {
	best := float32(math.MaxFloat32)
	var bx, by float32
	for i := range s.food {
		dx := s.food[i].X - x
		dy := s.food[i].Y - y
		if d := dx*dx + dy*dy; d < best {
			best = d
			bx, by = s.food[i].X, s.food[i].Y
		}
	}
	return bx, by, len(s.food) > 0
}

// snapshot builds an immutable frame from current world state. All slices
// are freshly allocated; consumers may hold frames indefinitely.
func (s *Sim) snapshot() *frame.Frame {
	f := &frame.Frame{
		Tick:         s.tick,
		Entities:     make([]frame.Entity, 0, s.pop.Load()),
		Food:         append([]frame.Food(nil), s.food...),
		Bubbles:      append([]frame.Bubble(nil), s.bubbles...),
		Decorations:  append([]frame.Decoration(nil), s.decorations...),
		WaterQuality: s.quality,
		TimeOfDay:    s.hour,
		ActiveEvent:  s.event,
	}

	query := s.filter.Query()
	for query.Next() {
		pos, vel, id, st := query.Get()
		f.Entities = append(f.Entities, frame.Entity{
			ID:       id.ID,
			X:        pos.X,
			Y:        pos.Y,
			Z:        pos.Z,
			VX:       vel.VX,
			VY:       vel.VY,
			Heading:  float32(math.Atan2(float64(vel.VY), float64(vel.VX))),
			Behavior: st.Behavior,
			TraitID:  id.TraitID,
			Infected: st.Infected,
		})
	}
	return f
}

// Run emits snapshots on out at the configured tick rate until ctx is
// canceled. A full channel drops the frame; the renderer interpolates over
// the gap.
func (s *Sim) Run(ctx context.Context, out chan<- *frame.Frame) {
	dt := float32(s.cfg.Derived.TickSec)
	ticker := time.NewTicker(time.Duration(s.cfg.Derived.TickSec * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f := s.Step(dt)
			select {
			case out <- f:
			default:
				slog.Warn("frame channel full, dropping snapshot", "tick", f.Tick)
			}
		}
	}
}

func bounce(p, v *float32, lo, hi float32) {
	if *p < lo {
		*p = lo
		if *v < 0 {
			*v = -*v
		}
	}
	if *p > hi {
		*p = hi
		if *v > 0 {
			*v = -*v
		}
	}
}

func sign(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}
