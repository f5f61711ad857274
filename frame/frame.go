// Package frame defines the authoritative simulation snapshot model and the
// interpolator that smooths 30 Hz snapshots into display-rate motion.
package frame

// Behavior tags the activity state of one fish for rendering cues.
type Behavior uint8

const (
	Swimming Behavior = iota
	Foraging
	Fleeing
	Resting
	Hunting
	Dying
	Courting
	Satiated
)

// String returns the lowercase behavior name used on the wire.
func (b Behavior) String() string {
	switch b {
	case Swimming:
		return "swimming"
	case Foraging:
		return "foraging"
	case Fleeing:
		return "fleeing"
	case Resting:
		return "resting"
	case Hunting:
		return "hunting"
	case Dying:
		return "dying"
	case Courting:
		return "courting"
	case Satiated:
		return "satiated"
	default:
		return "unknown"
	}
}

// Entity is the per-tick state of one living fish.
type Entity struct {
	ID       uint32
	X, Y     float32
	Z        float32 // depth in [0,1], 0 = back of tank
	VX, VY   float32
	Heading  float32 // radians
	Behavior Behavior
	TraitID  uint32
	Infected bool
}

// Food is a sinking food flake.
type Food struct {
	X, Y float32
}

// Bubble is a rising air bubble.
type Bubble struct {
	X, Y   float32
	Radius float32
}

// Decoration is a static tank ornament placed by the player.
type Decoration struct {
	ID    uint32
	Kind  string // "rock", "plant", ...
	X, Y  float32
	Scale float32
	FlipX bool
}

// Frame is one immutable authoritative snapshot. Tick increases strictly
// monotonically; environmental scalars style the background only.
type Frame struct {
	Tick        uint64
	Entities    []Entity
	Food        []Food
	Bubbles     []Bubble
	Decorations []Decoration

	WaterQuality float32 // [0,1]
	TimeOfDay    float32 // hours [0,24)
	ActiveEvent  string  // empty when no environmental event is running
}

// EntityByID returns the entity with the given id, if present.
func (f *Frame) EntityByID(id uint32) (Entity, bool) {
	for i := range f.Entities {
		if f.Entities[i].ID == id {
			return f.Entities[i], true
		}
	}
	return Entity{}, false
}

// ActiveIDs returns the set of trait IDs referenced by this frame's entities.
// Used as the sprite cache's keep set during eviction.
func (f *Frame) ActiveIDs() map[uint32]struct{} {
	ids := make(map[uint32]struct{}, len(f.Entities))
	for i := range f.Entities {
		ids[f.Entities[i].TraitID] = struct{}{}
	}
	return ids
}
