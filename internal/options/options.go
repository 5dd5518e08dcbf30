// Package options contains the program options.
package options

import (
	"time"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output .lst listing file (default: stdout)"`
	Batch  string `flag:"batch" usage:"list all files matching pattern (e.g. *.ch8)"`
}

// Flags contains behavior options.
type Flags struct {
	Disasm      bool `flag:"disasm" usage:"write a ROM listing instead of running the program"`
	Paused      bool `flag:"paused" usage:"start with all loops stopped"`
	SubLegacy   bool `flag:"sub-legacy" usage:"SUB keeps Vx unchanged when a borrow occurs"`
	HaltUnknown bool `flag:"halt-unknown" usage:"stop the CPU on unknown instructions" default:"true"`
	Trace       bool `flag:"trace" usage:"log every executed instruction"`
	Debug       bool `flag:"debug" usage:"enable debug logging"`
	Quiet       bool `flag:"q" usage:"quiet mode"`
}

// Timing contains the loop rates and input timing options.
type Timing struct {
	CPUHz      int           `flag:"cpu-hz" usage:"instructions per second" default:"500"`
	TimerHz    int           `flag:"timer-hz" usage:"timer decrements per second" default:"60"`
	DisplayHz  int           `flag:"display-hz" usage:"screen refreshes per second" default:"30"`
	KeyTimeout time.Duration `flag:"key-timeout" usage:"release all keys after no key event for this duration" default:"150ms"`
}

// OutputFlags contains listing formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Timing
	OutputFlags
}
