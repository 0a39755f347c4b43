// Command ed2d-stress measures how long selection sync takes with many
// pickable entities, both in isolation and through a full editor frame.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/config"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
	"go.uber.org/zap"
)

func main() {
	entityCount := flag.Int("entities", 10000, "Number of pickable entities to spawn.")
	iterations := flag.Int("iterations", 1000, "Selection changes measured per mode.")
	seed := flag.Int64("seed", 1, "Seed for choosing which entity is selected.")
	out := flag.String("out", "", "Write the markdown report to this file instead of stdout.")
	logLevel := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	if *entityCount <= 0 || *iterations <= 0 {
		fmt.Fprintln(os.Stderr, "-entities and -iterations must be positive")
		os.Exit(2)
	}

	logger, err := config.NewLogger(config.LoggingConfig{Level: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	report := &Report{
		Entities:   *entityCount,
		Iterations: *iterations,
		Seed:       *seed,
	}
	runtime.ReadMemStats(&report.MemStatsStart)
	start := time.Now()

	rng := rand.New(rand.NewSource(*seed))
	w := newWorld(*entityCount, logger)
	logger.Info("world populated", zap.Int("entities", len(w.ids)))

	report.Replace = w.measureDirect(rng, editor.SelectReplace, *iterations)
	report.Add = w.measureDirect(rng, editor.SelectAdd, *iterations)
	report.FrameReplace = w.measureFrames(rng, editor.SelectReplace, *iterations)
	report.FrameAdd = w.measureFrames(rng, editor.SelectAdd, *iterations)

	report.TotalTime = time.Since(start)
	report.Selected = w.ui().Selected.Len()
	runtime.ReadMemStats(&report.MemStatsEnd)

	dst := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatal("create report", zap.String("path", *out), zap.Error(err))
		}
		defer f.Close()
		dst = f
	}
	if err := report.Generate(dst); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
	logger.Info("stress test complete", zap.Duration("total", report.TotalTime))
}

// world is a headless editor with every entity pickable.
type world struct {
	storage    *ecs.Storage
	scheduler  *ecs.Scheduler
	selectable *ecs.View[struct{ *editor.PickSelection }]
	clicker    *clicker
	ids        []ecs.EntityId
}

func newWorld(entities int, logger *zap.Logger) *world {
	registry := ecs.NewComponentRegistry()
	c := &clicker{}
	plugin := &editor.Plugin{
		Settings: editor.DefaultSettings(),
		Logger:   logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
		UI:       c,
	}
	plugin.Install(registry)

	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage, ecs.WithLogger(logger.Named("scheduler")))
	plugin.Build(storage, scheduler)

	w := &world{
		storage:    storage,
		scheduler:  scheduler,
		selectable: ecs.NewView[struct{ *editor.PickSelection }](storage),
		clicker:    c,
	}

	side := int(math.Ceil(math.Sqrt(float64(entities))))
	for i := range entities {
		x, y := float32(i%side), float32(i/side)
		storage.Spawn(
			editor.NewTransform(x*2, y*2),
			editor.Sprite{Size: mgl32.Vec2{1, 1}},
			editor.Pickable{},
			editor.PickSelection{},
		)
	}

	// Settle the editor's own deferred setup before measuring.
	scheduler.Once(0)
	for id := range w.selectable.Iter() {
		w.ids = append(w.ids, id)
	}
	return w
}

func (w *world) ui() *editor.UiState {
	var ui *editor.UiState
	w.storage.ReadSingleton(&ui)
	return ui
}

// measureDirect times ApplySelectionAction alone.
func (w *world) measureDirect(rng *rand.Rand, mode editor.SelectionMode, n int) Stats {
	stats := Stats{Samples: make([]time.Duration, 0, n)}
	selected := w.ui().Selected
	for range n {
		id := w.ids[rng.Intn(len(w.ids))]
		selected.Select(mode, id)
		action, _ := selected.LastAction()

		begin := time.Now()
		editor.ApplySelectionAction(w.storage, selected, action, w.selectable.Iter())
		stats.Samples = append(stats.Samples, time.Since(begin))
	}
	stats.Finalize()
	return stats
}

// measureFrames times whole editor frames in which the UI changes the
// selection once.
func (w *world) measureFrames(rng *rand.Rand, mode editor.SelectionMode, n int) Stats {
	stats := Stats{Samples: make([]time.Duration, 0, n)}
	for range n {
		w.clicker.next = &editor.SelectionAction{Mode: mode, Entity: w.ids[rng.Intn(len(w.ids))]}

		begin := time.Now()
		w.scheduler.Once(1.0 / 60)
		stats.Samples = append(stats.Samples, time.Since(begin))
	}
	w.clicker.next = nil
	stats.Finalize()
	return stats
}

// clicker stands in for the dock UI and selects one entity per frame.
type clicker struct {
	next *editor.SelectionAction
}

func (c *clicker) Render(frame *editor.UiFrame) {
	if c.next == nil {
		return
	}
	frame.Select(c.next.Mode, c.next.Entity)
	c.next = nil
}
