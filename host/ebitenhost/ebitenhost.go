// Package ebitenhost runs a scene in an ebiten window. Frames are rendered by
// the software raster device; the debug overlay is drawn with Dear ImGui on
// top of the scene.
package ebitenhost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/debugui"
	"github.com/plus3/orrery/gpu/ebitendevice"
	"github.com/plus3/orrery/host"
	"github.com/plus3/orrery/scene"
)

// Game implements ebiten.Game for one scene.
type Game struct {
	ctx      context.Context
	scene    *scene.Scene
	device   *ebitendevice.Device
	imgui    *ImguiBackend
	overlay  *debugui.Overlay
	pointer  Pointer
	bindings []Binding
	logger   zerolog.Logger
	tick     float64
	last     time.Time
}

// maxFrameTime bounds the step after a stall such as a window drag.
const maxFrameTime = 0.25

// NewGame wires a built scene to its device. A nil backend disables the
// overlay.
func NewGame(ctx context.Context, s *scene.Scene, device *ebitendevice.Device, backend *ImguiBackend, tps int, logger zerolog.Logger) *Game {
	g := &Game{
		ctx:      ctx,
		scene:    s,
		device:   device,
		imgui:    backend,
		bindings: DefaultBindings,
		logger:   logger,
		tick:     1 / float64(max(tps, 1)),
	}
	if backend != nil {
		overlay, panels := debugui.NewOverlay(s)
		panels.Performance.Raster = func() string {
			f := device.LastFrame()
			return fmt.Sprintf("Raster: %d draws, %d triangles, %d batches", f.DrawCalls, f.Triangles, f.Batches)
		}
		g.overlay = overlay
	}
	return g
}

func (g *Game) captured() debugui.InputCapture {
	if g.overlay == nil {
		return debugui.InputCapture{}
	}
	return g.overlay.Capture
}

func (g *Game) pollInput() {
	capture := g.captured()
	state := g.scene.Input

	if capture.WantCaptureKeyboard || !ebiten.IsFocused() {
		state.Reset()
	} else {
		PollKeys(state, g.bindings, ebiten.IsKeyPressed)
	}

	x, y := ebiten.CursorPosition()
	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) && !capture.WantCaptureMouse
	if dx, dy, moved := g.pointer.Update(x, y, held); moved {
		state.AddPointerDelta(dx, dy)
	}
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.overlay != nil && inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.overlay.Toggle()
	}

	g.pollInput()

	g.imgui.BeginFrame()
	err := g.scene.Frame(g.step(time.Now()))
	g.imgui.EndFrame()
	if err != nil {
		return eris.Wrap(err, "frame")
	}
	return nil
}

// step returns the seconds since the previous update. The first update uses
// one tick.
func (g *Game) step(now time.Time) float64 {
	dt := g.tick
	if !g.last.IsZero() {
		dt = min(now.Sub(g.last).Seconds(), maxFrameTime)
	}
	g.last = now
	return dt
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.device.Present(screen)
	g.imgui.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imgui.Layout(outsideWidth, outsideHeight)
	g.scene.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens the window, builds the scene and blocks until the window closes,
// Esc is pressed, ctx is cancelled or a frame fails.
func Run(ctx context.Context, opts host.Options, build host.Builder, logger zerolog.Logger) error {
	logger = logger.With().Str("host", "ebiten").Logger()

	var backend *ImguiBackend
	if opts.DebugUI {
		backend = NewImguiBackend(opts.Title, opts.Width, opts.Height)
	}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(opts.VSync)
	ebiten.SetTPS(max(opts.TPS, 1))

	device := ebitendevice.New(logger)
	s, err := build(device)
	if err != nil {
		return err
	}
	s.Resize(opts.Width, opts.Height)

	game := NewGame(ctx, s, device, backend, opts.TPS, logger)
	logger.Info().Int("width", opts.Width).Int("height", opts.Height).Bool("debug_ui", opts.DebugUI).Msg("host started")

	err = ebiten.RunGame(game)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error().Err(err).Msg("host stopped")
		return eris.Wrap(err, "run game")
	}
	logger.Info().Msg("host stopped")
	return nil
}
