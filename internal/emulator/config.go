package emulator

import (
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/scheduler"
)

// Default loop rates in Hz.
const (
	DefaultCPUHz     = 500
	DefaultTimerHz   = 60
	DefaultDisplayHz = 30
)

// Config controls the machine and the pacing of its loops.
type Config struct {
	CPUPeriod     time.Duration
	TimerPeriod   time.Duration
	DisplayPeriod time.Duration

	SubPolicy           chip8.SubPolicy
	HaltOnUnknownOpcode bool // stop the CPU loop on unknown instructions instead of skipping them
	Trace               bool // log every executed instruction at debug level
	Paused              bool // do not start the loops, wait for control messages

	// Random overrides the random source of the RND instruction.
	Random func() uint8
	// NewTicker overrides the periodic trigger of the loops.
	NewTicker func(target Target, period time.Duration) scheduler.Ticker
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() Config {
	return Config{
		CPUPeriod:           time.Second / DefaultCPUHz,
		TimerPeriod:         time.Second / DefaultTimerHz,
		DisplayPeriod:       time.Second / DefaultDisplayHz,
		HaltOnUnknownOpcode: true,
	}
}

// Validate returns an error if the configuration can not be used.
func (c Config) Validate() error {
	periods := []struct {
		name   string
		period time.Duration
	}{
		{"cpu", c.CPUPeriod},
		{"timer", c.TimerPeriod},
		{"display", c.DisplayPeriod},
	}
	for _, p := range periods {
		if p.period <= 0 {
			return fmt.Errorf("invalid %s period %s", p.name, p.period)
		}
	}
	return nil
}
