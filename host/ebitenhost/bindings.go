package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/orrery/input"
)

// Binding maps a physical key to a camera control.
type Binding struct {
	Key     ebiten.Key
	Control input.Key
}

// DefaultBindings is the WASD and arrow-key layout.
var DefaultBindings = []Binding{
	{ebiten.KeyW, input.KeyForward},
	{ebiten.KeyS, input.KeyBackward},
	{ebiten.KeyA, input.KeyLeft},
	{ebiten.KeyD, input.KeyRight},
	{ebiten.KeySpace, input.KeyUp},
	{ebiten.KeyShiftLeft, input.KeyDown},
	{ebiten.KeyQ, input.KeyRollLeft},
	{ebiten.KeyE, input.KeyRollRight},
	{ebiten.KeyArrowLeft, input.KeyYawLeft},
	{ebiten.KeyArrowRight, input.KeyYawRight},
	{ebiten.KeyArrowUp, input.KeyPitchUp},
	{ebiten.KeyArrowDown, input.KeyPitchDown},
	{ebiten.KeyControlLeft, input.KeyBoost},
}

// PollKeys writes the pressed state of every binding into state. A control
// bound to several keys is held while any of them is.
func PollKeys(state *input.State, bindings []Binding, pressed func(ebiten.Key) bool) {
	var held [input.KeyCount]bool
	for _, b := range bindings {
		if b.Control < input.KeyCount && pressed(b.Key) {
			held[b.Control] = true
		}
	}
	for k := input.Key(0); k < input.KeyCount; k++ {
		state.SetKey(k, held[k])
	}
}

// Pointer turns absolute cursor positions into deltas while a drag is held.
type Pointer struct {
	x, y     int
	tracking bool
}

// Update returns the motion since the previous held sample. The first sample
// of a drag only records the position.
func (p *Pointer) Update(x, y int, held bool) (dx, dy float32, moved bool) {
	if !held {
		p.tracking = false
		return 0, 0, false
	}
	if !p.tracking {
		p.x, p.y, p.tracking = x, y, true
		return 0, 0, false
	}
	dx, dy = float32(x-p.x), float32(y-p.y)
	p.x, p.y = x, y
	return dx, dy, dx != 0 || dy != 0
}
