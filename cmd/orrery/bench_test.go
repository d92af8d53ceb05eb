package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/config"
)

func TestBench(t *testing.T) {
	cfg := config.Default()
	cfg.AssetDir = t.TempDir()
	a := &app{cfg: &cfg, logger: zerolog.Nop()}

	report, err := a.bench(benchOptions{frames: 5, dt: 1.0 / 60.0})
	require.NoError(t, err)

	assert.Equal(t, 11, report.Entities)
	assert.Equal(t, 55, report.Render.DrawCalls)
	assert.Equal(t, 11, report.Render.VertexArraysCreated, "one vertex array per body")
	assert.Zero(t, report.Faults)
	assert.Len(t, report.FrameTime.Samples, 5)
	assert.Len(t, report.Systems, 3)
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg)
	root.SetArgs([]string{"bench", "--frames", "1", "--width", "640", "--rotation-workers", "2", "--log-level", "error"})
	root.SetOut(&discard{})
	root.SetErr(&discard{})

	require.NoError(t, root.Execute())
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 2, cfg.RotationWorkers)
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg)
	root.SetArgs([]string{"bench", "--frames", "1", "--rotation-workers", "0"})
	root.SetOut(&discard{})
	root.SetErr(&discard{})

	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
