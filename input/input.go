// Package input is the boundary between a window host and the input system.
// Hosts push key transitions and pointer motion as they arrive; the input
// system samples the accumulated state once per frame without blocking.
package input

import (
	"fmt"
	"sync"
)

// Key is a logical key the camera controls react to.
type Key uint8

const (
	KeyForward Key = iota
	KeyBackward
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyRollLeft
	KeyRollRight
	KeyYawLeft
	KeyYawRight
	KeyPitchUp
	KeyPitchDown
	KeyBoost

	KeyCount
)

var keyNames = [KeyCount]string{
	KeyForward:   "forward",
	KeyBackward:  "backward",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyRollLeft:  "roll-left",
	KeyRollRight: "roll-right",
	KeyYawLeft:   "yaw-left",
	KeyYawRight:  "yaw-right",
	KeyPitchUp:   "pitch-up",
	KeyPitchDown: "pitch-down",
	KeyBoost:     "boost",
}

func (k Key) String() string {
	if k < KeyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// Snapshot is the input state at one point in time.
type Snapshot struct {
	Pressed [KeyCount]bool
	// PointerDX and PointerDY are the pointer motion in pixels since the
	// previous sample.
	PointerDX float32
	PointerDY float32
}

// Down reports whether k was held when the snapshot was taken.
func (s Snapshot) Down(k Key) bool {
	return k < KeyCount && s.Pressed[k]
}

// Axis returns +1, -1 or 0 from a pair of opposing keys.
func (s Snapshot) Axis(positive, negative Key) float32 {
	var v float32
	if s.Down(positive) {
		v++
	}
	if s.Down(negative) {
		v--
	}
	return v
}

// State accumulates input between frames. Hosts may write from their event
// goroutine while the frame loop samples.
type State struct {
	mu      sync.Mutex
	pressed [KeyCount]bool
	dx, dy  float32
}

// NewState returns a state with no keys held.
func NewState() *State {
	return &State{}
}

// SetKey records a key transition.
func (s *State) SetKey(k Key, down bool) {
	if k >= KeyCount {
		return
	}
	s.mu.Lock()
	s.pressed[k] = down
	s.mu.Unlock()
}

// AddPointerDelta accumulates pointer motion.
func (s *State) AddPointerDelta(dx, dy float32) {
	s.mu.Lock()
	s.dx += dx
	s.dy += dy
	s.mu.Unlock()
}

// Reset releases every key and drops pending pointer motion. Hosts call it
// when the window loses focus.
func (s *State) Reset() {
	s.mu.Lock()
	s.pressed = [KeyCount]bool{}
	s.dx, s.dy = 0, 0
	s.mu.Unlock()
}

// Sample returns the current state and clears the accumulated pointer delta.
// Held keys stay held.
func (s *State) Sample() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Pressed:   s.pressed,
		PointerDX: s.dx,
		PointerDY: s.dy,
	}
	s.dx, s.dy = 0, 0
	return snap
}
