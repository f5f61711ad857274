// Package genome defines the immutable heritable trait record that determines
// a fish's procedurally generated appearance.
package genome

import (
	"math"
	"math/rand"
)

// Sex affects minor rendering asymmetries (dorsal highlight).
type Sex uint8

const (
	Male Sex = iota
	Female
)

// PatternKind selects which body pattern overlay a fish carries.
type PatternKind uint8

const (
	Solid PatternKind = iota
	Striped
	Spotted
	Gradient
	Bicolor
)

// String returns the lowercase pattern name.
func (k PatternKind) String() string {
	switch k {
	case Solid:
		return "solid"
	case Striped:
		return "striped"
	case Spotted:
		return "spotted"
	case Gradient:
		return "gradient"
	case Bicolor:
		return "bicolor"
	default:
		return "unknown"
	}
}

// Pattern is a tagged union: exactly one kind is meaningful at a time, and
// Value carries that kind's single parameter:
//
//	Striped  -> stripe angle in degrees [0,180]
//	Spotted  -> spot density [0.2,1]
//	Gradient -> gradient direction in degrees [0,360)
//	Bicolor  -> split position along the body [0.3,0.7]
//	Solid    -> Value is ignored
type Pattern struct {
	Kind  PatternKind
	Value float32
}

// TraitRecord is the full heritable parameter set for one individual,
// identified by a stable ID. Records are write-once: two records with the
// same ID are bit-identical for the lifetime of the session, which is what
// makes the ID usable as a sprite cache key.
type TraitRecord struct {
	ID         uint32
	Generation uint32
	Sex        Sex

	// Appearance
	BaseHue            float32 // degrees [0,360)
	Saturation         float32 // [0.3,1]
	Lightness          float32 // [0.3,0.7]
	BodyLength         float32 // [0.6,2]
	BodyWidth          float32 // [0.5,1.5]
	TailSize           float32 // [0.5,2]
	DorsalFinSize      float32 // [0.3,1.5]
	PectoralFinSize    float32 // [0.3,1.5]
	Pattern            Pattern
	PatternIntensity   float32 // [0,1]
	PatternColorOffset float32 // degrees [0,180]
	EyeSize            float32 // [0.5,1.5]

	// Behavior and lifecycle genes. The renderer never reads these, but the
	// record mirrors the producing collaborator's full contract.
	Speed          float32
	Aggression     float32
	SchoolAffinity float32
	Curiosity      float32
	Boldness       float32
	Metabolism     float32
	Fertility      float32
	LifespanFactor float32
	MaturityAge    float32
}

// Clamped returns a copy with every appearance field forced into its valid
// range. Malformed input becomes a slightly odd-looking fish instead of a
// degenerate curve or a crash.
func (t TraitRecord) Clamped() TraitRecord {
	t.BaseHue = wrapDeg(t.BaseHue, 360)
	t.Saturation = clamp(t.Saturation, 0.3, 1.0)
	t.Lightness = clamp(t.Lightness, 0.3, 0.7)
	t.BodyLength = clamp(t.BodyLength, 0.6, 2.0)
	t.BodyWidth = clamp(t.BodyWidth, 0.5, 1.5)
	t.TailSize = clamp(t.TailSize, 0.5, 2.0)
	t.DorsalFinSize = clamp(t.DorsalFinSize, 0.3, 1.5)
	t.PectoralFinSize = clamp(t.PectoralFinSize, 0.3, 1.5)
	t.PatternIntensity = clamp(t.PatternIntensity, 0, 1)
	t.PatternColorOffset = clamp(t.PatternColorOffset, 0, 180)
	t.EyeSize = clamp(t.EyeSize, 0.5, 1.5)

	switch t.Pattern.Kind {
	case Striped:
		t.Pattern.Value = clamp(t.Pattern.Value, 0, 180)
	case Spotted:
		t.Pattern.Value = clamp(t.Pattern.Value, 0.2, 1.0)
	case Gradient:
		t.Pattern.Value = wrapDeg(t.Pattern.Value, 360)
	case Bicolor:
		t.Pattern.Value = clamp(t.Pattern.Value, 0.3, 0.7)
	default:
		t.Pattern = Pattern{Kind: Solid}
	}
	return t
}

// RandomPattern picks a uniformly random pattern variant with in-range params.
func RandomPattern(rng *rand.Rand) Pattern {
	switch rng.Intn(5) {
	case 0:
		return Pattern{Kind: Solid}
	case 1:
		return Pattern{Kind: Striped, Value: rng.Float32() * 180}
	case 2:
		return Pattern{Kind: Spotted, Value: 0.2 + rng.Float32()*0.8}
	case 3:
		return Pattern{Kind: Gradient, Value: rng.Float32() * 360}
	default:
		return Pattern{Kind: Bicolor, Value: 0.3 + rng.Float32()*0.4}
	}
}

// Random builds a fully random trait record with the given ID.
func Random(rng *rand.Rand, id uint32) TraitRecord {
	sex := Male
	if rng.Intn(2) == 0 {
		sex = Female
	}
	return TraitRecord{
		ID:  id,
		Sex: sex,

		BaseHue:            rng.Float32() * 360,
		Saturation:         0.3 + rng.Float32()*0.7,
		Lightness:          0.3 + rng.Float32()*0.4,
		BodyLength:         0.6 + rng.Float32()*1.4,
		BodyWidth:          0.5 + rng.Float32()*1.0,
		TailSize:           0.5 + rng.Float32()*1.5,
		DorsalFinSize:      0.3 + rng.Float32()*1.2,
		PectoralFinSize:    0.3 + rng.Float32()*1.2,
		Pattern:            RandomPattern(rng),
		PatternIntensity:   rng.Float32(),
		PatternColorOffset: rng.Float32() * 180,
		EyeSize:            0.5 + rng.Float32()*1.0,

		Speed:          0.5 + rng.Float32()*1.5,
		Aggression:     0.2 + rng.Float32()*0.3,
		SchoolAffinity: rng.Float32(),
		Curiosity:      rng.Float32(),
		Boldness:       rng.Float32(),
		Metabolism:     0.5 + rng.Float32()*1.5,
		Fertility:      0.3 + rng.Float32()*0.7,
		LifespanFactor: 0.5 + rng.Float32()*1.5,
		MaturityAge:    0.3 + rng.Float32()*0.4,
	}
}

// RandomDiverse builds the index-th of total founder records, spreading hues
// evenly around the color wheel, cycling pattern variants, and alternating sex
// so a starting population looks varied instead of samey.
func RandomDiverse(rng *rand.Rand, id uint32, index, total int) TraitRecord {
	t := Random(rng, id)

	hue := (360.0/float32(total))*float32(index) + (rng.Float32()*30 - 15)
	t.BaseHue = wrapDeg(hue, 360)

	switch index % 5 {
	case 0:
		t.Pattern = Pattern{Kind: Solid}
	case 1:
		t.Pattern = Pattern{Kind: Striped, Value: rng.Float32() * 180}
	case 2:
		t.Pattern = Pattern{Kind: Spotted, Value: 0.2 + rng.Float32()*0.8}
	case 3:
		t.Pattern = Pattern{Kind: Gradient, Value: rng.Float32() * 360}
	default:
		t.Pattern = Pattern{Kind: Bicolor, Value: 0.3 + rng.Float32()*0.4}
	}

	t.BodyLength = clamp(0.6+(1.4/float32(total))*float32(index)+(rng.Float32()*0.2-0.1), 0.6, 2.0)

	if index%2 == 0 {
		t.Sex = Male
	} else {
		t.Sex = Female
	}
	return t
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// wrapDeg wraps x into [0,m), handling negatives and NaN.
func wrapDeg(x, m float32) float32 {
	if x != x { // NaN
		return 0
	}
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}
