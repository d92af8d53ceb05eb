package main

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/plus3/orrery/gpu/recorder"
)

type benchOptions struct {
	frames         int
	dt             float64
	gcPauseMetrics bool
}

func newBenchCmd(a *app) *cobra.Command {
	var opts benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the frame pipeline headless against a recording device and report timings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.bench(opts)
			if err != nil {
				return err
			}
			return report.Generate(cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.frames, "frames", 1000, "frames to run")
	flags.Float64Var(&opts.dt, "dt", 1.0/60.0, "seconds per frame")
	flags.BoolVar(&opts.gcPauseMetrics, "gc-pause-metrics", false, "include GC pause totals in the report")
	return cmd
}

func (a *app) bench(opts benchOptions) (*Report, error) {
	device := recorder.New()
	s, err := a.builder()(device)
	if err != nil {
		return nil, err
	}
	s.Resize(a.cfg.Width, a.cfg.Height)

	report := &Report{
		Frames:          opts.frames,
		DeltaTime:       time.Duration(opts.dt * float64(time.Second)),
		Entities:        s.Storage.Len(),
		RotationWorkers: a.cfg.RotationWorkers,
		GCPauseMetrics:  opts.gcPauseMetrics,
		FrameTime:       Stats{Samples: make([]time.Duration, 0, opts.frames)},
	}
	report.Meshes, report.Textures, report.Shaders = s.Resources.Counts()

	a.logger.Info().Int("frames", opts.frames).Int("entities", report.Entities).Msg("bench started")
	runtime.ReadMemStats(&report.MemStatsStart)

	start := time.Now()
	for i := 0; i < opts.frames; i++ {
		device.Reset()

		frameStart := time.Now()
		if err := s.Frame(opts.dt); err != nil {
			return nil, err
		}
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))

		report.DeviceCalls += len(device.Calls)
		report.Faults += len(device.Faults)
	}
	report.TotalTime = time.Since(start)

	runtime.ReadMemStats(&report.MemStatsEnd)
	report.FrameTime.Finalize()
	report.Render = s.RenderSystem.Totals()
	report.Systems = s.Scheduler.GetStats().Systems

	a.logger.Info().Dur("total", report.TotalTime).Dur("avg_frame", report.FrameTime.Avg).Msg("bench finished")
	return report, nil
}
