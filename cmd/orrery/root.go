package main

import (
	"strings"

	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/plus3/orrery/config"
	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/host"
	"github.com/plus3/orrery/logging"
	"github.com/plus3/orrery/scene"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	profile  string
	profiler interface{ Stop() }
}

// newRootCmd builds the command tree. Flag defaults come from cfg, which
// already holds the ORRERY_* environment, so flags win over the environment.
func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "orrery",
		Short:         "Fly a camera through a textured, lit solar system",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.profiler != nil {
				a.profiler.Stop()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Scene, "scene", cfg.Scene, "scene definition file (default: built-in solar system)")
	flags.StringVar(&cfg.AssetDir, "asset-dir", cfg.AssetDir, "directory texture paths are resolved against")
	flags.IntVar(&cfg.MaxTextureSize, "max-texture-size", cfg.MaxTextureSize, "largest texture edge in pixels")
	flags.IntVar(&cfg.RotationWorkers, "rotation-workers", cfg.RotationWorkers, "goroutines advancing rotations")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "window or viewport width")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "window or viewport height")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	flags.StringVar(&a.profile, "profile", "", "write a cpu or mem profile to the working directory")

	root.AddCommand(newRunCmd(a), newBenchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	switch strings.ToLower(a.profile) {
	case "":
	case "cpu":
		a.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		a.profiler = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		return eris.Errorf("unknown profile %q", a.profile)
	}
	return nil
}

// builder returns the hook hosts call once their device exists.
func (a *app) builder() host.Builder {
	return func(device gpu.Device) (*scene.Scene, error) {
		def, err := host.Definition(*a.cfg)
		if err != nil {
			return nil, err
		}
		return scene.New(device, def, host.SceneOptions(*a.cfg), a.logger)
	}
}
