package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTimers_Tick(t *testing.T) {
	var timers Timers
	timers.SetDelay(3)
	timers.SetSound(2)

	assert.True(t, timers.Tick())
	assert.False(t, timers.Tick())
	assert.False(t, timers.Tick())
	assert.Equal(t, uint8(0), timers.Delay())
	assert.Equal(t, uint8(0), timers.Sound())

	assert.False(t, timers.Tick())
	assert.Equal(t, uint8(0), timers.Delay(), "timers never go below zero")
}
