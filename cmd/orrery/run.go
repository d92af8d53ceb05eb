package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plus3/orrery/config"
	"github.com/plus3/orrery/host"
	"github.com/plus3/orrery/host/ebitenhost"
	"github.com/plus3/orrery/host/glfwhost"
)

func newRunCmd(a *app) *cobra.Command {
	cfg := a.cfg
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and render the scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "ebiten (software raster) or gl (OpenGL 3.3)")
	flags.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	flags.BoolVar(&cfg.VSync, "vsync", cfg.VSync, "wait for vertical sync")
	flags.IntVar(&cfg.TPS, "tps", cfg.TPS, "ebiten updates per second")
	flags.BoolVar(&cfg.DebugUI, "debug-ui", cfg.DebugUI, "show the ImGui debug overlay (ebiten only, F1 toggles)")
	flags.Float64Var(&cfg.MoveSpeed, "move-speed", cfg.MoveSpeed, "camera speed in world units per second")
	flags.Float64Var(&cfg.TurnSpeed, "turn-speed", cfg.TurnSpeed, "camera turn rate in radians per second")
	flags.Float64Var(&cfg.PointerSensitivity, "pointer-sensitivity", cfg.PointerSensitivity, "radians per pixel of right-drag")
	return cmd
}

func (a *app) run(ctx context.Context) error {
	opts := host.WindowOptions(*a.cfg)
	a.logger.Info().Str("backend", a.cfg.Backend).Str("scene", a.cfg.Scene).Msg("starting")

	switch strings.ToLower(a.cfg.Backend) {
	case config.BackendGL:
		return glfwhost.Run(ctx, opts, a.builder(), a.logger)
	default:
		return ebitenhost.Run(ctx, opts, a.builder(), a.logger)
	}
}
