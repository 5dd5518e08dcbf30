package chip8

import (
	"math/bits"
	"sync/atomic"
)

// KeyCount is the number of keys of the hexadecimal keypad.
const KeyCount = 16

// Keyboard holds the pressed state of the 16 keys as a bit mask, bit n is
// set while key n is down. It is written by an input collaborator and read
// by the CPU, the mask is accessed atomically.
type Keyboard struct {
	mask atomic.Uint32
}

// Press marks the key as pressed. Only the low nibble of key is used.
func (k *Keyboard) Press(key uint8) {
	k.mask.Or(uint32(1) << (key & 0x0F))
}

// Release marks the key as released.
func (k *Keyboard) Release(key uint8) {
	k.mask.And(^(uint32(1) << (key & 0x0F)))
}

// Reset releases all keys.
func (k *Keyboard) Reset() {
	k.mask.Store(0)
}

// IsPressed returns whether the key is currently pressed.
func (k *Keyboard) IsPressed(key uint8) bool {
	return k.mask.Load()&(1<<(key&0x0F)) != 0
}

// Mask returns the bit mask of all pressed keys.
func (k *Keyboard) Mask() uint16 {
	return uint16(k.mask.Load())
}

// FirstPressed returns the lowest pressed key and whether any key is down.
func (k *Keyboard) FirstPressed() (uint8, bool) {
	mask := k.Mask()
	if mask == 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros16(mask)), true
}
