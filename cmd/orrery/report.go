package main

import (
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/rotisserie/eris"

	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/systems"
)

// Report summarizes a bench run.
type Report struct {
	Frames          int
	DeltaTime       time.Duration
	Entities        int
	Meshes          int
	Textures        int
	Shaders         int
	RotationWorkers int

	TotalTime   time.Duration
	FrameTime   Stats
	Render      systems.RenderStats
	Systems     []ecs.SystemStats
	DeviceCalls int
	Faults      int

	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Stats are the order statistics of a set of durations.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, sample := range sorted {
		total += sample
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Avg = total / time.Duration(len(sorted))
	s.P50 = sorted[percentileIndex(len(sorted), 50)]
	s.P99 = sorted[percentileIndex(len(sorted), 99)]
}

// percentileIndex uses the nearest-rank method.
func percentileIndex(n, p int) int {
	rank := (p*n + 99) / 100
	return min(max(rank-1, 0), n-1)
}

const reportTemplate = `
# Orrery Bench Report

## Scene
- **Entities:** {{.Entities}}
- **Meshes / Textures / Shaders:** {{.Meshes}} / {{.Textures}} / {{.Shaders}}
- **Rotation Workers:** {{.RotationWorkers}}

## Run
- **Frames:** {{.Frames}} at {{.DeltaTime}} per frame
- **Total Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **P50:** {{.FrameTime.P50}}
  - **P99:** {{.FrameTime.P99}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Rendering
- **Draw Calls:** {{.Render.DrawCalls}}
- **Triangles:** {{.Render.Triangles}}
- **Vertex Arrays Created:** {{.Render.VertexArraysCreated}}
- **Device Calls:** {{.DeviceCalls}}
- **Device Faults:** {{.Faults}}

## Systems
{{range .Systems}}- **{{.Name}}:** avg {{.AvgDuration}}, max {{.MaxDuration}}, errors {{.ErrorCount}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{ns (bsub .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}}
{{end}}`

var reportFuncs = template.FuncMap{
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns int64) string {
		return time.Duration(ns).String()
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return eris.Wrap(err, "parse report template")
	}
	if err := tmpl.Execute(w, r); err != nil {
		return eris.Wrap(err, "render report")
	}
	return nil
}
