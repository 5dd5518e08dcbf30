// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/options"
)

const defaultKeyTimeout = 150 * time.Millisecond

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard) // errors and usage are reported by the caller
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if errors.Is(err, flag.ErrHelp) {
		return opts, &UsageError{flags: flags}
	}
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if len(args) == 0 && opts.Input == "" && opts.Batch == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	if opts.Input == "" && opts.Batch == "" {
		opts.Input = args[0]
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptionCombinations checks for option values that can not be used
// together.
func validateOptionCombinations(opts options.Program) error {
	if opts.Batch != "" && !opts.Disasm {
		return errors.New("batch mode requires -disasm, only one program can be run")
	}
	if opts.Disasm && (opts.Paused || opts.Trace) {
		return errors.New("-paused and -trace can not be used with -disasm")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .lst listing file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "list a batch of given path and file mask with automatic .lst file naming, for example *.ch8")
	flags.BoolVar(&opts.Disasm, "disasm", false, "write a listing of the ROM instead of running it")
	flags.BoolVar(&opts.Paused, "paused", false, "start with all loops stopped, use the hot keys to start or step")
	flags.BoolVar(&opts.SubLegacy, "sub-legacy", false, "SUB keeps Vx unchanged when the subtraction borrows")
	flags.BoolVar(&opts.HaltUnknown, "halt-unknown", true, "stop the CPU on unknown instructions instead of skipping them")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug to be visible")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.IntVar(&opts.CPUHz, "cpu-hz", emulator.DefaultCPUHz, "instructions executed per second")
	flags.IntVar(&opts.TimerHz, "timer-hz", emulator.DefaultTimerHz, "delay and sound timer decrements per second")
	flags.IntVar(&opts.DisplayHz, "display-hz", emulator.DefaultDisplayHz, "screen refreshes per second")
	flags.DurationVar(&opts.KeyTimeout, "key-timeout", defaultKeyTimeout, "release all keys when no key event was received for this duration")

	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in listing comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses in listing comments")
}
