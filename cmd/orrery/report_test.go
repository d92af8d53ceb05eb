package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/ecs"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{}
	for i := 10; i >= 1; i-- {
		s.Samples = append(s.Samples, time.Duration(i)*time.Millisecond)
	}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 10*time.Millisecond, s.Max)
	assert.Equal(t, 5500*time.Microsecond, s.Avg)
	assert.Equal(t, 5*time.Millisecond, s.P50)
	assert.Equal(t, 10*time.Millisecond, s.P99)
	assert.Equal(t, 10*time.Millisecond, s.Samples[0], "samples keep their order")
}

func TestStatsFinalizeEmpty(t *testing.T) {
	s := Stats{}
	s.Finalize()
	assert.Zero(t, s.Avg)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		Frames:         3,
		Entities:       11,
		Systems:        []ecs.SystemStats{{Name: "render", AvgDuration: time.Millisecond}},
		GCPauseMetrics: true,
	}
	r.MemStatsEnd.PauseTotalNs = 2000

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))

	out := buf.String()
	assert.Contains(t, out, "**Entities:** 11")
	assert.Contains(t, out, "**render:** avg 1ms")
	assert.Contains(t, out, "**Total GC Pause:** 2µs")
}
