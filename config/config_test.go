package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Screen.Width != 1200 || cfg.Screen.Height != 800 {
		t.Errorf("expected 1200x800 screen, got %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Tank.Width != 1200 || cfg.Tank.Height != 800 {
		t.Errorf("expected 1200x800 tank, got %fx%f", cfg.Tank.Width, cfg.Tank.Height)
	}
	if cfg.Frames.TickRate != 30 {
		t.Errorf("expected 30 Hz tick rate, got %f", cfg.Frames.TickRate)
	}
	if cfg.Camera.MaxZoom <= cfg.Camera.MinZoom {
		t.Errorf("expected max zoom > min zoom, got %f <= %f",
			cfg.Camera.MaxZoom, cfg.Camera.MinZoom)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Derived.TankW32 != float32(cfg.Tank.Width) {
		t.Errorf("expected derived tank width %f, got %f",
			cfg.Tank.Width, cfg.Derived.TankW32)
	}
	wantTick := 1.0 / cfg.Frames.TickRate
	if cfg.Derived.TickSec != wantTick {
		t.Errorf("expected tick seconds %f, got %f", wantTick, cfg.Derived.TickSec)
	}
	if len(cfg.Sprite.BandScales) != 3 {
		t.Fatalf("expected 3 band scales, got %d", len(cfg.Sprite.BandScales))
	}
	for i := 0; i < 2; i++ {
		if cfg.Sprite.BandScales[i] >= cfg.Sprite.BandScales[i+1] {
			t.Errorf("expected ascending band scales, got %v", cfg.Sprite.BandScales)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("screen:\n  width: 1600\ncamera:\n  max_zoom: 8.0\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Screen.Width != 1600 {
		t.Errorf("expected overridden width 1600, got %d", cfg.Screen.Width)
	}
	if cfg.Camera.MaxZoom != 8.0 {
		t.Errorf("expected overridden max zoom 8.0, got %f", cfg.Camera.MaxZoom)
	}
	// Untouched fields keep defaults.
	if cfg.Screen.Height != 800 {
		t.Errorf("expected default height 800, got %d", cfg.Screen.Height)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
