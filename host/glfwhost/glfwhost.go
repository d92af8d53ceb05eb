// Package glfwhost runs a scene in a glfw window with an OpenGL 3.3 core
// context and the GL device.
package glfwhost

import (
	"context"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/gpu/glbackend"
	"github.com/plus3/orrery/host"
	"github.com/plus3/orrery/input"
)

// maxFrameTime bounds the step after a stall such as a window drag.
const maxFrameTime = 0.25

func init() {
	// glfw and GL calls must come from the main thread.
	runtime.LockOSThread()
}

// DefaultBindings is the WASD and arrow-key layout.
var DefaultBindings = map[glfw.Key]input.Key{
	glfw.KeyW:           input.KeyForward,
	glfw.KeyS:           input.KeyBackward,
	glfw.KeyA:           input.KeyLeft,
	glfw.KeyD:           input.KeyRight,
	glfw.KeySpace:       input.KeyUp,
	glfw.KeyLeftShift:   input.KeyDown,
	glfw.KeyQ:           input.KeyRollLeft,
	glfw.KeyE:           input.KeyRollRight,
	glfw.KeyLeft:        input.KeyYawLeft,
	glfw.KeyRight:       input.KeyYawRight,
	glfw.KeyUp:          input.KeyPitchUp,
	glfw.KeyDown:        input.KeyPitchDown,
	glfw.KeyLeftControl: input.KeyBoost,
}

// KeyEvent applies one glfw key event to state. Repeats carry no new state.
func KeyEvent(state *input.State, bindings map[glfw.Key]input.Key, key glfw.Key, action glfw.Action) {
	k, ok := bindings[key]
	if !ok || action == glfw.Repeat {
		return
	}
	state.SetKey(k, action == glfw.Press)
}

// Cursor turns absolute cursor positions into deltas while a drag is held.
type Cursor struct {
	x, y     float64
	tracking bool
}

func (c *Cursor) Move(x, y float64, held bool) (dx, dy float32, moved bool) {
	if !held {
		c.tracking = false
		return 0, 0, false
	}
	if !c.tracking {
		c.x, c.y, c.tracking = x, y, true
		return 0, 0, false
	}
	dx, dy = float32(x-c.x), float32(y-c.y)
	c.x, c.y = x, y
	return dx, dy, dx != 0 || dy != 0
}

// Run opens the window, builds the scene and blocks until the window closes,
// Esc is pressed, ctx is cancelled or a frame fails.
func Run(ctx context.Context, opts host.Options, build host.Builder, logger zerolog.Logger) error {
	logger = logger.With().Str("host", "glfw").Logger()

	if err := glfw.Init(); err != nil {
		return eris.Wrap(err, "glfw init")
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return eris.Wrap(err, "create window")
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	device, err := glbackend.New(logger)
	if err != nil {
		return err
	}
	defer device.Close()

	s, err := build(device)
	if err != nil {
		return err
	}
	s.Resize(win.GetFramebufferSize())

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		s.Resize(width, height)
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		KeyEvent(s.Input, DefaultBindings, key, action)
	})
	var cursor Cursor
	win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		held := w.GetMouseButton(glfw.MouseButtonRight) == glfw.Press
		if dx, dy, moved := cursor.Move(x, y, held); moved {
			s.Input.AddPointerDelta(dx, dy)
		}
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if !focused {
			s.Input.Reset()
		}
	})

	logger.Info().Int("width", opts.Width).Int("height", opts.Height).Msg("host started")

	last := glfw.GetTime()
	for !win.ShouldClose() {
		if ctx.Err() != nil {
			break
		}
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := min(now-last, maxFrameTime)
		last = now

		if err := s.Frame(dt); err != nil {
			logger.Error().Err(err).Msg("host stopped")
			return eris.Wrap(err, "frame")
		}
		win.SwapBuffers()
	}

	logger.Info().Msg("host stopped")
	return nil
}
