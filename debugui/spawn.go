package debugui

import (
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/scene"
)

// Panels bundles the standard debug windows of a scene.
type Panels struct {
	Performance *PerformanceStats
	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Camera      *CameraPanel
	Query       *QueryDebugger
}

// NewOverlay builds the standard panels for s and registers the overlay as the
// scene's last system.
func NewOverlay(s *scene.Scene) (*Overlay, *Panels) {
	p := &Panels{
		Performance: NewPerformanceStats(120, s.Scheduler, s.RenderSystem),
		Browser:     NewEntityBrowser(100),
		Camera:      NewCameraPanel(s.Camera, s.InputSystem),
		Query:       NewQueryDebugger(),
	}
	p.Inspector = NewComponentInspector(p.Browser)

	names := make(map[ecs.EntityId]string, len(s.BodyNames()))
	for _, name := range s.BodyNames() {
		if id, ok := s.Body(name); ok {
			names[id] = name
		}
	}
	p.Browser.Names = func(id ecs.EntityId) string { return names[id] }

	o := &Overlay{Panels: []Panel{p.Performance, p.Browser, p.Inspector, p.Camera, p.Query}}
	s.Scheduler.RegisterNamed("debugui", o)
	return o, p
}
