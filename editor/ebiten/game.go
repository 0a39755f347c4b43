package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
	"go.uber.org/zap"
)

// Game implements ebiten.Game. Each tick it polls input, runs the update
// scheduler inside an imgui frame and, on draw, runs the render scheduler
// before the imgui overlay.
type Game struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	render    *ecs.Scheduler
	imgui     *ImguiBackend

	input  *ecs.Singleton[editor.Input]
	window *ecs.Singleton[editor.Window]
	screen *ecs.Singleton[Screen]
	poller *inputPoller

	background color.NRGBA
	quitKey    *editor.Key
	log        *zap.Logger
}

// GameOption configures a Game.
type GameOption func(*Game)

// WithQuitKey ends the game loop when key is pressed.
func WithQuitKey(key editor.Key) GameOption {
	return func(g *Game) { g.quitKey = &key }
}

// WithGameLogger sets the logger for window and layout changes.
func WithGameLogger(log *zap.Logger) GameOption {
	return func(g *Game) { g.log = log }
}

// WithBackground sets the color the game view is cleared to.
func WithBackground(c color.NRGBA) GameOption {
	return func(g *Game) { g.background = c }
}

// NewGame wires storage and its update scheduler to ebiten. imgui may be
// nil to run without the dock UI.
func NewGame(storage *ecs.Storage, scheduler *ecs.Scheduler, imgui *ImguiBackend, opts ...GameOption) *Game {
	g := &Game{
		storage:   storage,
		scheduler: scheduler,
		imgui:     imgui,
		input:     ecs.NewSingleton[editor.Input](storage),
		window:    ecs.NewSingleton(storage, editor.Window{ScaleFactor: 1}),
		screen:    ecs.NewSingleton[Screen](storage),
		poller:    newInputPoller(ebitenSource{}),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.render = NewRenderScheduler(storage, g.background, ecs.WithLogger(g.log.Named("render")))
	return g
}

func (g *Game) Update() error {
	input := g.input.Get()
	g.poller.Poll(input, g.window.Get().LogicalSize())
	if g.quitKey != nil && input.Keys.JustPressed(*g.quitKey) {
		return ebiten.Termination
	}

	if g.imgui != nil {
		g.imgui.BeginFrame()
	}
	g.scheduler.Once(tickSeconds(ebiten.TPS()))
	if g.imgui != nil {
		g.imgui.EndFrame()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Get().Image = screen
	g.render.Once(0)
	if g.imgui != nil {
		g.imgui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.imgui != nil {
		g.imgui.Layout(outsideWidth, outsideHeight)
	}

	win := WindowFromLayout(outsideWidth, outsideHeight, ebiten.Monitor().DeviceScaleFactor())
	if current := g.window.Get(); *current != win {
		g.log.Debug("window resized",
			zap.Uint32("physical_width", win.PhysicalWidth),
			zap.Uint32("physical_height", win.PhysicalHeight),
			zap.Float32("scale_factor", win.ScaleFactor))
		*current = win
	}
	return outsideWidth, outsideHeight
}

// tickSeconds is the fixed update step for tps ticks per second. ebiten
// reports a non-positive TPS when updates are synced with the frame rate.
func tickSeconds(tps int) float64 {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return 1 / float64(tps)
}
