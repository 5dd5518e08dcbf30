package chip8

import "sync"

// Timers contains the delay and sound timers. They are shared between the
// CPU and the timer loop, all access is synchronized.
type Timers struct {
	mu    sync.Mutex
	delay uint8
	sound uint8
}

// Tick decrements both non-zero timers by one and returns whether the sound
// timer is still active after the tick.
func (t *Timers) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
	return t.sound > 0
}

// Delay returns the current delay timer value.
func (t *Timers) Delay() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// SetDelay sets the delay timer.
func (t *Timers) SetDelay(value uint8) {
	t.mu.Lock()
	t.delay = value
	t.mu.Unlock()
}

// Sound returns the current sound timer value.
func (t *Timers) Sound() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sound
}

// SetSound sets the sound timer.
func (t *Timers) SetSound(value uint8) {
	t.mu.Lock()
	t.sound = value
	t.mu.Unlock()
}
