package input_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/orrery/input"
)

func TestSampleResetsPointerDelta(t *testing.T) {
	s := input.NewState()
	s.AddPointerDelta(3, -2)
	s.AddPointerDelta(1, 1)

	snap := s.Sample()
	assert.Equal(t, float32(4), snap.PointerDX)
	assert.Equal(t, float32(-1), snap.PointerDY)

	snap = s.Sample()
	assert.Zero(t, snap.PointerDX)
	assert.Zero(t, snap.PointerDY)
}

func TestKeysStayHeld(t *testing.T) {
	s := input.NewState()
	s.SetKey(input.KeyForward, true)

	assert.True(t, s.Sample().Down(input.KeyForward))
	assert.True(t, s.Sample().Down(input.KeyForward))

	s.SetKey(input.KeyForward, false)
	assert.False(t, s.Sample().Down(input.KeyForward))

	s.SetKey(input.KeyCount, true)
	assert.False(t, s.Sample().Down(input.KeyCount))
}

func TestAxis(t *testing.T) {
	s := input.NewState()
	assert.Zero(t, s.Sample().Axis(input.KeyForward, input.KeyBackward))

	s.SetKey(input.KeyBackward, true)
	assert.Equal(t, float32(-1), s.Sample().Axis(input.KeyForward, input.KeyBackward))

	s.SetKey(input.KeyForward, true)
	assert.Zero(t, s.Sample().Axis(input.KeyForward, input.KeyBackward), "opposing keys cancel")
}

func TestReset(t *testing.T) {
	s := input.NewState()
	s.SetKey(input.KeyBoost, true)
	s.AddPointerDelta(5, 5)
	s.Reset()

	snap := s.Sample()
	assert.False(t, snap.Down(input.KeyBoost))
	assert.Zero(t, snap.PointerDX)
}

func TestConcurrentWriters(t *testing.T) {
	s := input.NewState()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.AddPointerDelta(1, 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float32(800), s.Sample().PointerDX)
}
