// Package config handles application configuration and setup
package config

import (
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateMachineConfig converts the program options to a machine
// configuration.
func CreateMachineConfig(opts options.Program) (emulator.Config, error) {
	cfg := emulator.DefaultConfig()

	rates := []struct {
		name   string
		hz     int
		period *time.Duration
	}{
		{"cpu", opts.CPUHz, &cfg.CPUPeriod},
		{"timer", opts.TimerHz, &cfg.TimerPeriod},
		{"display", opts.DisplayHz, &cfg.DisplayPeriod},
	}
	for _, rate := range rates {
		if rate.hz <= 0 || time.Duration(rate.hz) > time.Second {
			return emulator.Config{}, fmt.Errorf("invalid %s rate %d Hz", rate.name, rate.hz)
		}
		*rate.period = time.Second / time.Duration(rate.hz)
	}

	if opts.KeyTimeout <= 0 {
		return emulator.Config{}, fmt.Errorf("invalid key timeout %s", opts.KeyTimeout)
	}

	if opts.SubLegacy {
		cfg.SubPolicy = chip8.SubWriteOnNoBorrow
	}
	cfg.HaltOnUnknownOpcode = opts.HaltUnknown
	cfg.Trace = opts.Trace
	cfg.Paused = opts.Paused
	return cfg, nil
}

// CreateListingOptions converts the program options to listing options.
func CreateListingOptions(opts options.Program) disasm.Options {
	listing := disasm.DefaultOptions()
	listing.HexComments = !opts.NoHexComments
	listing.OffsetComments = !opts.NoOffsets
	return listing
}
