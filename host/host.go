// Package host holds what the window hosts share: the settings they open a
// window with and the hook that builds a scene once a device exists.
package host

import (
	"github.com/plus3/orrery/config"
	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/scene"
)

// Builder creates the scene on the device a host opened.
type Builder func(device gpu.Device) (*scene.Scene, error)

type Options struct {
	Title   string
	Width   int
	Height  int
	VSync   bool
	TPS     int
	DebugUI bool
}

// WindowOptions picks the window settings out of cfg.
func WindowOptions(cfg config.Config) Options {
	return Options{
		Title:   cfg.Title,
		Width:   cfg.Width,
		Height:  cfg.Height,
		VSync:   cfg.VSync,
		TPS:     cfg.TPS,
		DebugUI: cfg.DebugUI,
	}
}

// SceneOptions picks the scene settings out of cfg.
func SceneOptions(cfg config.Config) scene.Options {
	return scene.Options{
		AssetDir:           cfg.AssetDir,
		MaxTextureSize:     cfg.MaxTextureSize,
		RotationWorkers:    cfg.RotationWorkers,
		MoveSpeed:          float32(cfg.MoveSpeed),
		TurnSpeed:          float32(cfg.TurnSpeed),
		PointerSensitivity: float32(cfg.PointerSensitivity),
	}
}

// Definition loads cfg.Scene, or returns the built-in solar system when no
// scene file is configured.
func Definition(cfg config.Config) (*scene.Definition, error) {
	if cfg.Scene == "" {
		return scene.DefaultDefinition(), nil
	}
	return scene.Load(cfg.Scene)
}
