// Command ed2d-demo opens an ebiten window with two sprites and the editor.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/config"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
	"github.com/plus3/ed2d/editor/dockui"
	edebiten "github.com/plus3/ed2d/editor/ebiten"
	"go.uber.org/zap"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

func main() {
	configPath := flag.String("config", "", "Editor config file (.toml, .yaml or .yml).")
	iniFile := flag.String("imgui-ini", "", "File imgui saves window state to. Empty disables it.")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	settings, err := editor.SettingsFromConfig(cfg)
	if err != nil {
		logger.Fatal("invalid config", zap.String("path", *configPath), zap.Error(err))
	}

	backend := edebiten.NewImguiBackend("ed2d demo", windowWidth, windowHeight, *iniFile)
	dockui.Configure(settings)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Spin](registry)

	plugin := &editor.Plugin{
		Settings: settings,
		Logger:   logger,
		UI:       dockui.New(dockui.WithLogger(logger.Named("dockui"))),
		Assets:   assets.NewRegistry(),
	}
	plugin.Install(registry)

	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage, ecs.WithLogger(logger.Named("scheduler")))
	plugin.Build(storage, scheduler)
	scheduler.Add(ecs.Update, &SpinSystem{})

	spawnScene(storage, plugin.Assets)

	game := edebiten.NewGame(storage, scheduler, backend,
		edebiten.WithGameLogger(logger.Named("ebiten")),
		edebiten.WithBackground(color.NRGBA{R: 0x17, G: 0x17, B: 0x17, A: 0xff}),
	)
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("game loop", zap.Error(err))
	}
}

// Palette is a demo asset listed in the Assets browser.
type Palette struct {
	Name   string
	Colors []color.NRGBA
}

// Spin rotates an entity around its z axis.
type Spin struct {
	RadiansPerSecond float32
}

type SpinSystem struct {
	Spinning ecs.Query[struct {
		*editor.Transform
		*Spin
	}]
}

func (s *SpinSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Spinning.Values() {
		angle := e.Transform.Angle2D() + e.Spin.RadiansPerSecond*float32(frame.DeltaTime)
		*e.Transform = e.Transform.WithRotation(angle)
	}
}

func spawnScene(storage *ecs.Storage, registry *assets.Registry) {
	palettes := assets.Register[Palette](registry)
	palettes.Add(Palette{
		Name: "warm",
		Colors: []color.NRGBA{
			{R: 0xf9, G: 0x73, B: 0x16, A: 0xff},
			{R: 0xea, G: 0xb3, B: 0x08, A: 0xff},
		},
	})
	cool := Palette{
		Name: "cool",
		Colors: []color.NRGBA{
			{R: 0x0e, G: 0xa5, B: 0xe9, A: 0xff},
			{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff},
		},
	}
	palettes.Add(cool)

	storage.Spawn(
		editor.NewTransform(-150, 0),
		editor.Sprite{Color: cool.Colors[0], Size: mgl32.Vec2{100, 100}},
		editor.Name("Square"),
	)
	storage.Spawn(
		editor.NewTransform(150, 40).WithRotation(mgl32.DegToRad(30)),
		editor.Sprite{Color: cool.Colors[1], Size: mgl32.Vec2{160, 60}},
		editor.Name("Bar"),
		Spin{RadiansPerSecond: 0.5},
	)
}
