package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/saagar210/DeepTank/camera"
	"github.com/saagar210/DeepTank/config"
	"github.com/saagar210/DeepTank/frame"
	"github.com/saagar210/DeepTank/render"
	"github.com/saagar210/DeepTank/sim"
	"github.com/saagar210/DeepTank/sprite"
	"github.com/saagar210/DeepTank/telemetry"
	"github.com/saagar210/DeepTank/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	founders := flag.Int("founders", 12, "Starting fish count")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Exit after N simulation ticks (0 = unlimited)")
	logPerf := flag.Bool("log-perf", false, "Log frame timing stats each perf window")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "DeepTank")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	view := camera.New(
		cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
		cfg.Derived.TankW32, cfg.Derived.TankH32,
		float32(cfg.Camera.MinZoom), float32(cfg.Camera.MaxZoom),
		float32(cfg.Camera.WheelStep),
	)
	gen := sprite.NewGenerator(sprite.ParamsFromConfig(cfg))
	cache := sprite.NewCache(gen, cfg.Sprite.WorkerQueue)
	defer cache.Close()

	world := sim.New(cfg, rngSeed, *founders)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	comp := render.New(cfg, view, cache, world, perf, rngSeed)

	frames := make(chan *frame.Frame, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go world.Run(ctx, frames)

	slog.Info("starting", "seed", rngSeed, "founders", *founders,
		"tick_rate", cfg.Frames.TickRate)

	frameN := 0
	for !rl.WindowShouldClose() {
		now := time.Now()
		dt := rl.GetFrameTime()
		perf.StartFrame()

		perf.StartPhase(telemetry.PhaseIngest)
		drainFrames(frames, comp, now)

		handleInput(comp, view, world, now)
		comp.Update(now, dt)

		rl.BeginDrawing()
		comp.Draw(now)

		perf.StartPhase(telemetry.PhaseUI)
		if e, ok := comp.Selected(); ok {
			rec, known := world.Genome(e.TraitID)
			ui.DrawInspector(int32(view.ScreenH), e, rec, known)
		}
		actions := ui.DrawPanel(int32(view.ScreenW), ui.HUD{
			Tick:       comp.CurrentTick(),
			Population: world.Population(),
			FPS:        int(rl.GetFPS()),
			CacheReady: cache.Len(),
			Theme:      comp.ThemeName(),
			Paused:     comp.Paused(),
			Primed:     comp.Primed(),
		})
		rl.EndDrawing()

		applyActions(actions, comp, view, world, *outputDir)
		perf.EndFrame()

		frameN++
		if cfg.Telemetry.PerfWindow > 0 && frameN%cfg.Telemetry.PerfWindow == 0 {
			stats := perf.Stats()
			if *logPerf {
				stats.LogStats()
			}
			if err := output.WritePerf(stats, int64(comp.CurrentTick())); err != nil {
				slog.Warn("perf output failed", "error", err)
			}
			if err := output.WriteCache(comp.CacheStats()); err != nil {
				slog.Warn("cache output failed", "error", err)
			}
		}

		if *maxTicks > 0 && comp.CurrentTick() >= uint64(*maxTicks) {
			slog.Info("max ticks reached", "tick", comp.CurrentTick())
			break
		}
	}
}

// drainFrames ingests every snapshot waiting on the channel. While paused,
// frames are discarded so the scene freezes without backing up the producer.
func drainFrames(frames <-chan *frame.Frame, comp *render.Compositor, now time.Time) {
	for {
		select {
		case f := <-frames:
			if !comp.Paused() {
				comp.Ingest(f, now)
			}
		default:
			return
		}
	}
}

func handleInput(comp *render.Compositor, view *camera.Viewport, world *sim.Sim, now time.Time) {
	mouse := rl.GetMousePosition()
	overPanel := mouse.X > view.ScreenW-170

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		view.ZoomAt(mouse.X, mouse.Y, wheel)
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) || rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		d := rl.GetMouseDelta()
		view.Pan(d.X, d.Y)
	}

	if !overPanel {
		comp.HoverAt(mouse.X, mouse.Y, now)
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			comp.SelectAt(mouse.X, mouse.Y, now)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		comp.TogglePause()
	case rl.IsKeyPressed(rl.KeyHome):
		view.Reset()
	case rl.IsKeyPressed(rl.KeyF):
		world.RequestFeed()
	case rl.IsKeyPressed(rl.KeyN):
		world.RequestSpawn()
	case rl.IsKeyPressed(rl.KeyT):
		comp.CycleTheme()
	}
}

func applyActions(a ui.Actions, comp *render.Compositor, view *camera.Viewport, world *sim.Sim, outputDir string) {
	if a.TogglePause {
		comp.TogglePause()
	}
	if a.Feed {
		world.RequestFeed()
	}
	if a.AddFish {
		world.RequestSpawn()
	}
	if a.CycleTheme {
		slog.Info("theme changed", "theme", comp.CycleTheme())
	}
	if a.ResetView {
		view.Reset()
	}
	if a.Screenshot {
		dir := outputDir
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("deeptank_%d.png", time.Now().Unix()))
		comp.CaptureFrame(path)
		slog.Info("screenshot saved", "path", path)
	}
}
