package ebitenhost

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend wraps the ebiten Dear ImGui backend. A nil *ImguiBackend is a
// disabled overlay and every method is a no-op.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the ImGui context and sizes the ebiten window.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: b}
}

func (b *ImguiBackend) BeginFrame() {
	if b != nil {
		b.EbitenBackend.BeginFrame()
	}
}

func (b *ImguiBackend) EndFrame() {
	if b != nil {
		b.EbitenBackend.EndFrame()
	}
}

func (b *ImguiBackend) Draw(screen *ebiten.Image) {
	if b != nil {
		b.EbitenBackend.Draw(screen)
	}
}

func (b *ImguiBackend) Layout(width, height int) {
	if b != nil {
		b.EbitenBackend.Layout(width, height)
	}
}
