// Package sprite procedurally rasterizes fish sprites from trait records and
// caches them per record ID with visibility-based eviction.
package sprite

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/saagar210/DeepTank/config"
	"github.com/saagar210/DeepTank/genome"
)

// Params controls sprite geometry and the pattern overlay cutoff.
type Params struct {
	// UnitPixels is the pixel size of one body-length unit at band scale 1.
	UnitPixels float64
	// Padding is the margin around the fin extents.
	Padding float64
	// BandScales are the back/mid/front render scales, ascending.
	BandScales [3]float64
	// IntensityThreshold is the pattern intensity below which the overlay
	// pass is skipped entirely.
	IntensityThreshold float64
}

// ParamsFromConfig builds generation params from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		UnitPixels:         cfg.Sprite.UnitPixels,
		Padding:            cfg.Sprite.Padding,
		IntensityThreshold: cfg.Sprite.IntensityThreshold,
	}
	copy(p.BandScales[:], cfg.Sprite.BandScales)
	return p
}

// Generator rasterizes trait records into RGBA sprite images. It is stateless
// apart from its params; the same record always yields the same pixels, so
// the output is cacheable by record ID.
type Generator struct {
	p Params
}

func NewGenerator(p Params) *Generator {
	return &Generator{p: p}
}

// RenderBands rasterizes the record at all three depth-band scales,
// back to front.
func (g *Generator) RenderBands(rec genome.TraitRecord) [3]*image.RGBA {
	var out [3]*image.RGBA
	for i, s := range g.p.BandScales {
		out[i] = g.Render(rec, s)
	}
	return out
}

// Render rasterizes one sprite at the given scale. The fish faces right with
// the head toward +x; the canvas is sized tightly around body, tail, and fin
// extents plus padding. Malformed records are clamped, never rejected.
func (g *Generator) Render(rec genome.TraitRecord, scale float64) *image.RGBA {
	rec = rec.Clamped()

	unit := g.p.UnitPixels * scale
	geo := newGeometry(rec, unit, g.p.Padding)

	dc := gg.NewContext(geo.w, geo.h)

	body := colorful.Hsl(float64(rec.BaseHue), float64(rec.Saturation), float64(rec.Lightness))
	fin := colorful.Hsl(float64(rec.BaseHue), float64(rec.Saturation)*0.9,
		math.Max(float64(rec.Lightness)*0.75, 0.15))

	drawBody(dc, geo, rec, body)
	drawFins(dc, geo, rec, fin)
	drawEye(dc, geo, rec)
	drawPattern(dc, geo, rec, g.p.IntensityThreshold)

	return dc.Image().(*image.RGBA)
}

// geometry is the pixel layout of one sprite: canvas size, body center, and
// the extents every layer draws against.
type geometry struct {
	w, h     int
	cx, cy   float64
	bodyRX   float64 // body half-length
	bodyRY   float64 // body half-height
	tailLen  float64
	dorsalH  float64
	pectoral float64
}

func newGeometry(rec genome.TraitRecord, unit, pad float64) geometry {
	bodyRX := float64(rec.BodyLength) * unit * 0.5
	bodyRY := float64(rec.BodyWidth) * unit * 0.31
	tailLen := float64(rec.TailSize) * unit * 0.55
	dorsalH := float64(rec.DorsalFinSize) * unit * 0.38
	pectoral := float64(rec.PectoralFinSize) * unit * 0.30

	top := bodyRY + dorsalH
	bottom := bodyRY + pectoral

	w := int(math.Ceil(tailLen+bodyRX*2)) + int(2*pad)
	h := int(math.Ceil(top+bottom)) + int(2*pad)
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}

	return geometry{
		w: w, h: h,
		cx:       pad + tailLen + bodyRX,
		cy:       pad + top,
		bodyRX:   bodyRX,
		bodyRY:   bodyRY,
		tailLen:  tailLen,
		dorsalH:  dorsalH,
		pectoral: pectoral,
	}
}

func (g geometry) tailRootX() float64 { return g.cx - g.bodyRX*0.92 }

// bodyPath traces the body silhouette: a closed curve from nose to tail root
// and back, with the dorsal edge arched higher than the ventral edge.
func bodyPath(dc *gg.Context, geo geometry) {
	nose := geo.cx + geo.bodyRX
	tail := geo.cx - geo.bodyRX
	dc.MoveTo(nose, geo.cy)
	dc.QuadraticTo(geo.cx-geo.bodyRX*0.15, geo.cy-geo.bodyRY*1.35, tail, geo.cy)
	dc.QuadraticTo(geo.cx-geo.bodyRX*0.05, geo.cy+geo.bodyRY*1.1, nose, geo.cy)
	dc.ClosePath()
}

func drawBody(dc *gg.Context, geo geometry, rec genome.TraitRecord, c colorful.Color) {
	dc.SetRGBA(c.R, c.G, c.B, 1)
	bodyPath(dc, geo)
	dc.Fill()

	// Males carry a brighter ridge along the back.
	if rec.Sex == genome.Male {
		hl := colorful.Hsl(float64(rec.BaseHue), float64(rec.Saturation),
			math.Min(float64(rec.Lightness)+0.18, 0.9))
		dc.Push()
		bodyPath(dc, geo)
		dc.Clip()
		dc.SetRGBA(hl.R, hl.G, hl.B, 0.6)
		dc.DrawEllipse(geo.cx, geo.cy-geo.bodyRY*0.7, geo.bodyRX*0.8, geo.bodyRY*0.35)
		dc.Fill()
		dc.Pop()
	}
}

// Fin shape classes, shared by tail, dorsal, and pectoral fins. A size gene
// below finNubMax renders a nub, above finStandardMax an elaborate shape,
// standard in between.
const (
	finNubMax      = 0.6
	finStandardMax = 1.3
)

func drawFins(dc *gg.Context, geo geometry, rec genome.TraitRecord, c colorful.Color) {
	dc.SetRGBA(c.R, c.G, c.B, 0.95)
	drawTail(dc, geo, rec)
	drawDorsal(dc, geo, rec)
	drawPectoral(dc, geo, rec)
}

// drawTail renders a stub, a forked triangle, or a curved fan.
func drawTail(dc *gg.Context, geo geometry, rec genome.TraitRecord) {
	rootX := geo.tailRootX()
	tipX := rootX - geo.tailLen
	spread := geo.bodyRY * (0.7 + float64(rec.TailSize)*0.35)

	switch {
	case rec.TailSize < finNubMax:
		dc.MoveTo(rootX, geo.cy-spread*0.5)
		dc.LineTo(tipX, geo.cy)
		dc.LineTo(rootX, geo.cy+spread*0.5)
		dc.ClosePath()
	case rec.TailSize < finStandardMax:
		// Forked: two lobes meeting at the peduncle.
		dc.MoveTo(rootX, geo.cy)
		dc.LineTo(tipX, geo.cy-spread)
		dc.LineTo(rootX-geo.tailLen*0.45, geo.cy)
		dc.LineTo(tipX, geo.cy+spread)
		dc.ClosePath()
	default:
		// Fan with curved trailing edge.
		dc.MoveTo(rootX, geo.cy)
		dc.QuadraticTo(rootX-geo.tailLen*0.3, geo.cy-spread*1.1, tipX, geo.cy-spread*0.8)
		dc.QuadraticTo(tipX-geo.tailLen*0.15, geo.cy, tipX, geo.cy+spread*0.8)
		dc.QuadraticTo(rootX-geo.tailLen*0.3, geo.cy+spread*1.1, rootX, geo.cy)
		dc.ClosePath()
	}
	dc.Fill()
}

// drawDorsal renders a low ridge, a swept triangle, or a scalloped sail.
func drawDorsal(dc *gg.Context, geo geometry, rec genome.TraitRecord) {
	dTop := geo.cy - geo.bodyRY - geo.dorsalH
	base := geo.cy - geo.bodyRY*0.6

	switch {
	case rec.DorsalFinSize < finNubMax:
		// Low rounded ridge hugging the back.
		dc.MoveTo(geo.cx-geo.bodyRX*0.35, base)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.05, dTop, geo.cx+geo.bodyRX*0.25, base)
		dc.ClosePath()
	case rec.DorsalFinSize < finStandardMax:
		dc.MoveTo(geo.cx-geo.bodyRX*0.45, base)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.15, dTop, geo.cx+geo.bodyRX*0.2, dTop+geo.dorsalH*0.35)
		dc.LineTo(geo.cx+geo.bodyRX*0.35, base)
		dc.ClosePath()
	default:
		// Sail: tall leading spike with a scalloped trailing edge.
		dc.MoveTo(geo.cx-geo.bodyRX*0.55, base)
		dc.LineTo(geo.cx-geo.bodyRX*0.3, dTop)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.05, dTop+geo.dorsalH*0.5, geo.cx+geo.bodyRX*0.15, dTop+geo.dorsalH*0.25)
		dc.QuadraticTo(geo.cx+geo.bodyRX*0.3, dTop+geo.dorsalH*0.7, geo.cx+geo.bodyRX*0.45, base)
		dc.ClosePath()
	}
	dc.Fill()
}

// drawPectoral renders a small tab, a swept triangle, or a trailing blade.
func drawPectoral(dc *gg.Context, geo geometry, rec genome.TraitRecord) {
	base := geo.cy + geo.bodyRY*0.5
	pTip := geo.cy + geo.bodyRY + geo.pectoral

	switch {
	case rec.PectoralFinSize < finNubMax:
		// Small rounded tab just below the midline.
		dc.MoveTo(geo.cx+geo.bodyRX*0.05, base)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.1, pTip, geo.cx-geo.bodyRX*0.2, base)
		dc.ClosePath()
	case rec.PectoralFinSize < finStandardMax:
		// Swept triangle angled toward the tail.
		dc.MoveTo(geo.cx+geo.bodyRX*0.1, base)
		dc.LineTo(geo.cx-geo.bodyRX*0.25, pTip)
		dc.LineTo(geo.cx-geo.bodyRX*0.3, base)
		dc.ClosePath()
	default:
		// Long blade trailing behind the body with a curved underside.
		dc.MoveTo(geo.cx+geo.bodyRX*0.15, base)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.2, pTip, geo.cx-geo.bodyRX*0.6, pTip-geo.pectoral*0.2)
		dc.QuadraticTo(geo.cx-geo.bodyRX*0.35, geo.cy+geo.bodyRY*0.7, geo.cx-geo.bodyRX*0.3, base)
		dc.ClosePath()
	}
	dc.Fill()
}

func drawEye(dc *gg.Context, geo geometry, rec genome.TraitRecord) {
	ex := geo.cx + geo.bodyRX*0.55
	ey := geo.cy - geo.bodyRY*0.15
	r := float64(rec.EyeSize) * geo.bodyRY * 0.38
	if r < 1 {
		r = 1
	}

	dc.SetRGBA(0.95, 0.95, 0.92, 1)
	dc.DrawCircle(ex, ey, r)
	dc.Fill()
	dc.SetRGBA(0.08, 0.08, 0.1, 1)
	dc.DrawCircle(ex+r*0.15, ey, r*0.55)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawCircle(ex+r*0.3, ey-r*0.25, r*0.18)
	dc.Fill()
}

// drawPattern overlays the record's pattern clipped to the body silhouette.
// Overlay alpha tracks intensity; below the threshold the whole pass is
// skipped so a record with intensity 0.04 is pixel-identical to intensity 0.
func drawPattern(dc *gg.Context, geo geometry, rec genome.TraitRecord, threshold float64) {
	if rec.Pattern.Kind == genome.Solid {
		return
	}
	intensity := float64(rec.PatternIntensity)
	if intensity < threshold {
		return
	}

	hue := math.Mod(float64(rec.BaseHue)+float64(rec.PatternColorOffset), 360)
	pc := colorful.Hsl(hue, float64(rec.Saturation),
		math.Max(float64(rec.Lightness)*0.6, 0.1))
	alpha := 0.25 + 0.65*intensity

	dc.Push()
	bodyPath(dc, geo)
	dc.Clip()

	switch rec.Pattern.Kind {
	case genome.Striped:
		drawStripes(dc, geo, float64(rec.Pattern.Value), pc, alpha)
	case genome.Spotted:
		drawSpots(dc, geo, rec, pc, alpha)
	case genome.Gradient:
		drawGradient(dc, geo, float64(rec.Pattern.Value), pc, alpha)
	case genome.Bicolor:
		drawBicolor(dc, geo, float64(rec.Pattern.Value), pc, alpha)
	}

	dc.Pop()
}

func drawStripes(dc *gg.Context, geo geometry, angleDeg float64, c colorful.Color, alpha float64) {
	dc.Push()
	dc.RotateAbout(angleDeg*math.Pi/180, geo.cx, geo.cy)
	dc.SetRGBA(c.R, c.G, c.B, alpha)

	span := geo.bodyRX + geo.bodyRY
	width := geo.bodyRX * 0.18
	gap := width * 1.6
	for x := geo.cx - span; x <= geo.cx+span; x += width + gap {
		dc.DrawRectangle(x, geo.cy-span, width, span*2)
		dc.Fill()
	}
	dc.Pop()
}

// drawSpots scatters circles with a PRNG seeded from the pattern parameters,
// never from the record ID: records that differ only in ID must rasterize to
// identical pixels.
func drawSpots(dc *gg.Context, geo geometry, rec genome.TraitRecord, c colorful.Color, alpha float64) {
	density := float64(rec.Pattern.Value)
	seed := int64(math.Float32bits(rec.Pattern.Value))<<32 |
		int64(math.Float32bits(rec.PatternIntensity))
	rng := rand.New(rand.NewSource(seed))

	n := 4 + int(density*14)
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	for i := 0; i < n; i++ {
		// Rejection-free placement inside the body ellipse.
		t := rng.Float64() * 2 * math.Pi
		rr := math.Sqrt(rng.Float64())
		x := geo.cx + math.Cos(t)*rr*geo.bodyRX*0.9
		y := geo.cy + math.Sin(t)*rr*geo.bodyRY*0.85
		r := geo.bodyRY * (0.12 + rng.Float64()*0.14)
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}
}

func drawGradient(dc *gg.Context, geo geometry, dirDeg float64, c colorful.Color, alpha float64) {
	rad := dirDeg * math.Pi / 180
	span := geo.bodyRX
	x0 := geo.cx - math.Cos(rad)*span
	y0 := geo.cy - math.Sin(rad)*span
	x1 := geo.cx + math.Cos(rad)*span
	y1 := geo.cy + math.Sin(rad)*span

	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	grad.AddColorStop(0, color.NRGBA{A: 0})
	grad.AddColorStop(1, color.NRGBA{
		R: uint8(c.R * 255), G: uint8(c.G * 255), B: uint8(c.B * 255),
		A: uint8(alpha * 255),
	})
	dc.SetFillStyle(grad)
	// The clip already bounds the fill to the silhouette.
	dc.DrawRectangle(geo.cx-geo.bodyRX, geo.cy-geo.bodyRY*1.4, geo.bodyRX*2, geo.bodyRY*2.8)
	dc.Fill()
}

func drawBicolor(dc *gg.Context, geo geometry, split float64, c colorful.Color, alpha float64) {
	// split in [0.3,0.7] positions the color break along the body axis,
	// 0 = tail end.
	bx := geo.cx - geo.bodyRX + 2*geo.bodyRX*split
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	dc.DrawRectangle(geo.cx-geo.bodyRX, geo.cy-geo.bodyRY, bx-(geo.cx-geo.bodyRX), geo.bodyRY*2)
	dc.Fill()
}
