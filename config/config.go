// Package config provides configuration loading and access for the renderer.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all renderer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Tank      TankConfig      `yaml:"tank"`
	Frames    FramesConfig    `yaml:"frames"`
	Camera    CameraConfig    `yaml:"camera"`
	Sprite    SpriteConfig    `yaml:"sprite"`
	Cache     CacheConfig     `yaml:"cache"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TankConfig holds the world (tank) dimensions in world units.
type TankConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FramesConfig holds the authoritative frame timing contract.
type FramesConfig struct {
	// TickRate is the nominal simulation frame rate in Hz.
	TickRate float64 `yaml:"tick_rate"`
}

// CameraConfig holds viewport pan/zoom parameters.
type CameraConfig struct {
	MinZoom   float64 `yaml:"min_zoom"`
	MaxZoom   float64 `yaml:"max_zoom"`
	WheelStep float64 `yaml:"wheel_step"` // zoom ratio per wheel notch
}

// SpriteConfig holds procedural sprite generation parameters.
type SpriteConfig struct {
	UnitPixels         float64   `yaml:"unit_pixels"`         // pixels per body-length unit at full scale
	Padding            float64   `yaml:"padding"`             // extra pixels around fin extents
	BandScales         []float64 `yaml:"band_scales"`         // back/mid/front render scales
	IntensityThreshold float64   `yaml:"intensity_threshold"` // pattern overlays below this are skipped
	WorkerQueue        int       `yaml:"worker_queue"`        // pending generation job buffer
}

// CacheConfig holds sprite cache eviction parameters.
type CacheConfig struct {
	// EvictInterval is how many simulation ticks pass between eviction sweeps.
	EvictInterval int `yaml:"evict_interval"`
}

// RenderConfig holds compositor parameters.
type RenderConfig struct {
	PickRadius    float64 `yaml:"pick_radius"`    // hit-test radius in screen pixels at zoom 1
	DaylightStart float64 `yaml:"daylight_start"` // hour when light rays switch on
	DaylightEnd   float64 `yaml:"daylight_end"`   // hour when light rays switch off
	ParticleCount int     `yaml:"particle_count"` // floating motes
	Theme         string  `yaml:"theme"`
}

// TelemetryConfig holds render telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // frames averaged per perf sample
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	TankW32   float32 // Tank.Width as float32
	TankH32   float32 // Tank.Height as float32
	TickSec   float64 // seconds per authoritative frame
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.TankW32 = float32(c.Tank.Width)
	c.Derived.TankH32 = float32(c.Tank.Height)

	if c.Frames.TickRate <= 0 {
		c.Frames.TickRate = 30
	}
	c.Derived.TickSec = 1.0 / c.Frames.TickRate

	if len(c.Sprite.BandScales) != 3 {
		c.Sprite.BandScales = []float64{0.70, 0.85, 1.00}
	}
	if c.Sprite.WorkerQueue <= 0 {
		c.Sprite.WorkerQueue = 256
	}
	if c.Cache.EvictInterval <= 0 {
		c.Cache.EvictInterval = 90
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
