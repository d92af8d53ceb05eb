package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/systems"
)

// FrameHistory is a ring buffer of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	index   int
	filled  int
}

func NewFrameHistory(frames int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, max(frames, 1))}
}

// Record adds a frame time given in seconds.
func (h *FrameHistory) Record(dt float64) {
	h.samples[h.index] = float32(dt * 1000)
	h.index = (h.index + 1) % len(h.samples)
	h.filled = min(h.filled+1, len(h.samples))
}

// Average returns the mean frame time in milliseconds over the recorded
// samples, or 0 before the first sample.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < h.filled; i++ {
		sum += h.samples[i]
	}
	return sum / float32(h.filled)
}

// FPS derives frames per second from Average.
func (h *FrameHistory) FPS() float32 {
	avg := h.Average()
	if avg == 0 {
		return 0
	}
	return 1000 / avg
}

// PerformanceStats shows frame timing, storage occupancy, per-system timings
// and render counters.
type PerformanceStats struct {
	History      *FrameHistory
	Scheduler    *ecs.Scheduler
	RenderSystem *systems.RenderSystem
	// Raster reports backend figures when the device has any.
	Raster func() string
}

func NewPerformanceStats(historyFrames int, scheduler *ecs.Scheduler, render *systems.RenderSystem) *PerformanceStats {
	return &PerformanceStats{
		History:      NewFrameHistory(historyFrames),
		Scheduler:    scheduler,
		RenderSystem: render,
	}
}

func (ps *PerformanceStats) Render(frame *ecs.UpdateFrame) {
	ps.History.Record(frame.DeltaTime)

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := frame.Storage.CollectStats()

	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", ps.History.Average(), ps.History.FPS()))
	imgui.Text(fmt.Sprintf("Frame: %d", frame.Index))
	imgui.Text(fmt.Sprintf("Entities: %d (slots %d, free %d)", stats.TotalEntityCount, stats.SlotCount, stats.FreeSlotCount))

	if ps.RenderSystem != nil {
		last := ps.RenderSystem.LastFrame()
		imgui.Text(fmt.Sprintf("Draw Calls: %d  Triangles: %d", last.DrawCalls, last.Triangles))
	}
	if ps.Raster != nil {
		imgui.Text(ps.Raster())
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.History.samples[0], int32(len(ps.History.samples)))

	if imgui.TreeNodeStr("Components") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("MaskTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, m := range stats.MaskBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(m.Mask.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", m.EntityCount))
			}
			imgui.EndTable()
		}
		for k := ecs.ComponentKind(0); k < ecs.KindCount; k++ {
			imgui.BulletText(fmt.Sprintf("%s: %d", k, stats.ComponentCounts[k]))
		}
		imgui.TreePop()
	}

	if ps.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, s := range ps.Scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(formatDuration(s.LastDuration))
				imgui.TableNextColumn()
				imgui.Text(formatDuration(s.AvgDuration))
				imgui.TableNextColumn()
				imgui.Text(formatDuration(s.MaxDuration))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000)
}
