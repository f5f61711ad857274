// Package telemetry collects render-loop timing and cache statistics and
// writes them to CSV for offline analysis.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for one display frame.
const (
	PhaseIngest   = "ingest"   // frame channel drain + interpolator update
	PhaseSprites  = "sprites"  // cache ensure/collect
	PhaseWorld    = "world"    // background, decorations, food, bubbles
	PhaseEntities = "entities" // depth-sorted fish draw
	PhaseEffects  = "effects"  // rays, particles, ripple
	PhaseUI       = "ui"       // overlay widgets
	PhaseEvict    = "evict"    // cache eviction sweep
)

// PerfSample holds timing data for a single display frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks frame timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize frames
// (e.g. 120 for two seconds at 60 fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new display frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// SampleCount returns the number of frames recorded so far, capped at the
// window size.
func (p *PerfCollector) SampleCount() int { return p.sampleCount }

// PerfStats holds aggregated frame statistics over the window.
type PerfStats struct {
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration

	// Frame-time quantiles over the window.
	P50Frame time.Duration
	P95Frame time.Duration
	P99Frame time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	FPS float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minF, maxF time.Duration
	phaseSum := make(map[string]time.Duration)
	durations := make([]float64, p.sampleCount)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration
		durations[i] = float64(s.FrameDuration)

		if i == 0 || s.FrameDuration < minF {
			minF = s.FrameDuration
		}
		if s.FrameDuration > maxF {
			maxF = s.FrameDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	sort.Float64s(durations)
	p50 := time.Duration(stat.Quantile(0.50, stat.Empirical, durations, nil))
	p95 := time.Duration(stat.Quantile(0.95, stat.Empirical, durations, nil))
	p99 := time.Duration(stat.Quantile(0.99, stat.Empirical, durations, nil))

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var fps float64
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgFrame: avg,
		MinFrame: minF,
		MaxFrame: maxF,
		P50Frame: p50,
		P95Frame: p95,
		P99Frame: p99,
		PhaseAvg: phaseAvg,
		PhasePct: phasePct,
		FPS:      fps,
	}
}

// LogStats logs aggregated frame statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"p95_frame_us", s.P95Frame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"fps", int(s.FPS),
	}

	phases := []string{
		PhaseIngest, PhaseSprites, PhaseWorld,
		PhaseEntities, PhaseEffects, PhaseUI, PhaseEvict,
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("p50_frame_us", s.P50Frame.Microseconds()),
		slog.Int64("p95_frame_us", s.P95Frame.Microseconds()),
		slog.Int64("p99_frame_us", s.P99Frame.Microseconds()),
		slog.Float64("fps", s.FPS),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of frame stats.
type PerfStatsCSV struct {
	WindowEnd   int64   `csv:"window_end_tick"`
	AvgFrameUS  int64   `csv:"avg_frame_us"`
	MinFrameUS  int64   `csv:"min_frame_us"`
	MaxFrameUS  int64   `csv:"max_frame_us"`
	P50FrameUS  int64   `csv:"p50_frame_us"`
	P95FrameUS  int64   `csv:"p95_frame_us"`
	P99FrameUS  int64   `csv:"p99_frame_us"`
	FPS         float64 `csv:"fps"`
	IngestPct   float64 `csv:"ingest_pct"`
	SpritesPct  float64 `csv:"sprites_pct"`
	WorldPct    float64 `csv:"world_pct"`
	EntitiesPct float64 `csv:"entities_pct"`
	EffectsPct  float64 `csv:"effects_pct"`
	UIPct       float64 `csv:"ui_pct"`
	EvictPct    float64 `csv:"evict_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgFrameUS:  s.AvgFrame.Microseconds(),
		MinFrameUS:  s.MinFrame.Microseconds(),
		MaxFrameUS:  s.MaxFrame.Microseconds(),
		P50FrameUS:  s.P50Frame.Microseconds(),
		P95FrameUS:  s.P95Frame.Microseconds(),
		P99FrameUS:  s.P99Frame.Microseconds(),
		FPS:         s.FPS,
		IngestPct:   s.PhasePct[PhaseIngest],
		SpritesPct:  s.PhasePct[PhaseSprites],
		WorldPct:    s.PhasePct[PhaseWorld],
		EntitiesPct: s.PhasePct[PhaseEntities],
		EffectsPct:  s.PhasePct[PhaseEffects],
		UIPct:       s.PhasePct[PhaseUI],
		EvictPct:    s.PhasePct[PhaseEvict],
	}
}

// CacheStatsCSV is one sprite-cache measurement row.
type CacheStatsCSV struct {
	Tick      int64  `csv:"tick"`
	Ready     int    `csv:"ready"`
	Generated uint64 `csv:"generated"`
	Dropped   uint64 `csv:"dropped"`
	Evicted   int    `csv:"evicted"`
}
