package chip8

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRegisters_RegisterAccess(t *testing.T) {
	tests := []struct {
		index int
		valid bool
	}{
		{-1, false},
		{0, true},
		{FlagRegister, true},
		{RegisterCount, false},
		{0x100, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("V%d", tt.index), func(t *testing.T) {
			r := NewRegisters()

			err := r.SetRegister(tt.index, 0x42)
			value, readErr := r.Register(tt.index)
			if !tt.valid {
				assert.True(t, errors.Is(err, ErrRegisterOutOfRange))
				assert.True(t, errors.Is(readErr, ErrRegisterOutOfRange))
				assert.Equal(t, [RegisterCount]uint8{}, r.V)
				return
			}

			assert.NoError(t, err)
			assert.NoError(t, readErr)
			assert.Equal(t, uint8(0x42), value)
			assert.Equal(t, uint8(0x42), r.V[tt.index])
		})
	}
}

func TestCPU_RegisterAccess(t *testing.T) {
	// ADD V3, 1
	cpu := newTestCPU(t, Options{}, 0x73, 0x01)

	assert.NoError(t, cpu.SetRegister(3, 0x41))
	mustStep(t, cpu)

	value, err := cpu.Register(3)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x42), value)

	_, err = cpu.Register(16)
	assert.True(t, errors.Is(err, ErrRegisterOutOfRange))
	err = cpu.SetRegister(16, 1)
	assert.True(t, errors.Is(err, ErrRegisterOutOfRange))
}
