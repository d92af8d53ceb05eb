// Package config loads runtime settings from ORRERY_* environment variables.
// Command-line flags are bound on top of the loaded values by cmd/orrery.
package config

import (
	"errors"
	"strings"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

const (
	BackendEbiten = "ebiten"
	BackendGL     = "gl"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	Backend string `config:"ORRERY_BACKEND"`
	Title   string `config:"ORRERY_TITLE"`
	Width   int    `config:"ORRERY_WIDTH"`
	Height  int    `config:"ORRERY_HEIGHT"`
	VSync   bool   `config:"ORRERY_VSYNC"`
	// TPS is the ebiten update rate.
	TPS int `config:"ORRERY_TPS"`

	// Scene is a JSON scene file. Empty selects the built-in solar system.
	Scene          string `config:"ORRERY_SCENE"`
	AssetDir       string `config:"ORRERY_ASSET_DIR"`
	MaxTextureSize int    `config:"ORRERY_MAX_TEXTURE_SIZE"`

	RotationWorkers    int     `config:"ORRERY_ROTATION_WORKERS"`
	MoveSpeed          float64 `config:"ORRERY_MOVE_SPEED"`
	TurnSpeed          float64 `config:"ORRERY_TURN_SPEED"`
	PointerSensitivity float64 `config:"ORRERY_POINTER_SENSITIVITY"`

	DebugUI bool `config:"ORRERY_DEBUG_UI"`

	LogLevel  string `config:"ORRERY_LOG_LEVEL"`
	LogFormat string `config:"ORRERY_LOG_FORMAT"`
}

// Default returns the settings used when nothing is overridden.
func Default() Config {
	return Config{
		Backend:            BackendEbiten,
		Title:              "orrery",
		Width:              1280,
		Height:             720,
		VSync:              true,
		TPS:                60,
		AssetDir:           "assets/textures",
		MaxTextureSize:     2048,
		RotationWorkers:    1,
		MoveSpeed:          40,
		TurnSpeed:          1.2,
		PointerSensitivity: 0.003,
		DebugUI:            true,
		LogLevel:           "info",
		LogFormat:          FormatConsole,
	}
}

// Load applies ORRERY_* environment variables on top of Default.
func Load() (Config, error) {
	cfg := Default()
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "load config from env")
	}
	return cfg, nil
}

// Validate reports the first setting the program cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendEbiten, BackendGL:
	default:
		return eris.Wrapf(ErrInvalidConfig, "unknown backend %q", c.Backend)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return eris.Wrapf(ErrInvalidConfig, "window size %dx%d", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return eris.Wrapf(ErrInvalidConfig, "tps %d", c.TPS)
	}
	if c.MaxTextureSize < 0 {
		return eris.Wrapf(ErrInvalidConfig, "max texture size %d", c.MaxTextureSize)
	}
	if c.RotationWorkers < 1 {
		return eris.Wrapf(ErrInvalidConfig, "rotation workers %d", c.RotationWorkers)
	}
	if c.MoveSpeed <= 0 || c.TurnSpeed <= 0 || c.PointerSensitivity <= 0 {
		return eris.Wrap(ErrInvalidConfig, "speeds must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case FormatConsole, FormatJSON:
	default:
		return eris.Wrapf(ErrInvalidConfig, "unknown log format %q", c.LogFormat)
	}
	return nil
}
