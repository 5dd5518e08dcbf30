// Package emulator composes the CHIP-8 machine core with the CPU, timer and
// display loops and exposes the control surface used by front ends.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Target identifies one of the machine loops.
type Target int

const (
	// CPU is the loop executing one instruction per tick.
	CPU Target = iota
	// Timer is the loop decrementing the delay and sound timers.
	Timer
	// Display is the loop passing the screen content to the renderer.
	Display
)

func (t Target) String() string {
	switch t {
	case CPU:
		return "cpu"
	case Timer:
		return "timer"
	case Display:
		return "display"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// Targets lists all loops of the machine.
var Targets = []Target{CPU, Timer, Display}

// Renderer receives the screen content from the display loop.
type Renderer interface {
	Render(frame chip8.Frame)
}

// Beeper is notified by the timer loop when the sound turns on or off.
type Beeper interface {
	Beep(active bool)
}

// Machine is a CHIP-8 machine with its three independently paced loops.
type Machine struct {
	logger *log.Logger
	cfg    Config

	cpu      *chip8.CPU
	display  *chip8.Display
	timers   *chip8.Timers
	keyboard *chip8.Keyboard

	renderer Renderer
	beeper   Beeper
	sound    bool // accessed by the timer loop only
	trace    func(step chip8.Step)

	loops [3]*scheduler.Loop
}

// New returns a machine with memory seeded with the font, cleared display
// and zeroed timers. Renderer and beeper are optional.
func New(logger *log.Logger, cfg Config, renderer Renderer, beeper Beeper) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		logger:   logger,
		cfg:      cfg,
		display:  &chip8.Display{},
		timers:   &chip8.Timers{},
		keyboard: &chip8.Keyboard{},
		renderer: renderer,
		beeper:   beeper,
	}
	m.trace = m.logInstruction
	m.cpu = chip8.NewCPU(chip8.NewMemory(chip8.Font), m.display, m.timers, m.keyboard, chip8.Options{
		SubPolicy: cfg.SubPolicy,
		Random:    cfg.Random,
	})

	loops := []scheduler.Config{
		{Name: CPU.String(), Period: cfg.CPUPeriod, Work: m.cpuWork, OnError: m.handleCPUError},
		{Name: Timer.String(), Period: cfg.TimerPeriod, Work: m.timerWork},
		{Name: Display.String(), Period: cfg.DisplayPeriod, Work: m.displayWork},
	}
	for i, loopCfg := range loops {
		if cfg.NewTicker != nil {
			target := Target(i)
			loopCfg.NewTicker = func(period time.Duration) scheduler.Ticker {
				return cfg.NewTicker(target, period)
			}
		}
		loop, err := scheduler.New(logger, loopCfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s loop: %w", loopCfg.Name, err)
		}
		m.loops[i] = loop
	}

	return m, nil
}

// Load loads the program into memory at the program start address.
func (m *Machine) Load(program []byte) error {
	if err := m.cpu.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	m.logger.Debug("Program loaded", log.Int("size", len(program)))
	return nil
}

// Run runs all loops until the context is cancelled. Unless the machine is
// configured as paused, all loops are started.
func (m *Machine) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, loop := range m.loops {
		group.Go(func() error {
			return loop.Run(ctx)
		})
	}

	if !m.cfg.Paused {
		for _, target := range Targets {
			if err := m.Control(ctx, target, scheduler.Start); err != nil {
				_ = group.Wait()
				return err
			}
		}
	}

	return group.Wait()
}

// Control sends a control message to the loop of the target.
func (m *Machine) Control(ctx context.Context, target Target, msg scheduler.Message) error {
	loop, err := m.loop(target)
	if err != nil {
		return err
	}
	if err := loop.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %s to %s loop: %w", msg, loop.Name(), err)
	}
	return nil
}

// State returns the run state of the loop of the target.
func (m *Machine) State(target Target) scheduler.State {
	loop, err := m.loop(target)
	if err != nil {
		return scheduler.Stopped
	}
	return loop.State()
}

// Err returns the last failure of the loop of the target.
func (m *Machine) Err(target Target) error {
	loop, err := m.loop(target)
	if err != nil {
		return err
	}
	return loop.Err()
}

// Keyboard returns the keypad that input collaborators update.
func (m *Machine) Keyboard() *chip8.Keyboard {
	return m.keyboard
}

// Frame returns a copy of the current screen content.
func (m *Machine) Frame() chip8.Frame {
	return m.display.Snapshot()
}

// Registers returns a copy of the registers between two instructions.
func (m *Machine) Registers() chip8.Registers {
	return m.cpu.Snapshot()
}

// Register returns the value of register Vx between two instructions.
func (m *Machine) Register(index int) (uint8, error) {
	value, err := m.cpu.Register(index)
	if err != nil {
		return 0, fmt.Errorf("reading register: %w", err)
	}
	return value, nil
}

// SetRegister changes register Vx between two instructions.
func (m *Machine) SetRegister(index int, value uint8) error {
	if err := m.cpu.SetRegister(index, value); err != nil {
		return fmt.Errorf("writing register: %w", err)
	}
	return nil
}

// Timers returns the current delay and sound timer values.
func (m *Machine) Timers() (delay, sound uint8) {
	return m.timers.Delay(), m.timers.Sound()
}

func (m *Machine) loop(target Target) (*scheduler.Loop, error) {
	if target < 0 || int(target) >= len(m.loops) {
		return nil, fmt.Errorf("unknown loop target %d", int(target))
	}
	return m.loops[target], nil
}

func (m *Machine) cpuWork(context.Context) error {
	step, err := m.cpu.Step()
	if m.cfg.Trace && step.Fetched {
		m.trace(step)
	}
	return err
}

func (m *Machine) logInstruction(step chip8.Step) {
	m.logger.Debug("Instruction",
		log.Hex("pc", step.Address),
		log.Hex("opcode", step.Operation.Opcode),
		log.String("instruction", disasm.Mnemonic(step.Operation.Opcode)))
}

// handleCPUError decides whether the CPU loop is stopped after a failed step.
func (m *Machine) handleCPUError(err error) bool {
	if errors.Is(err, chip8.ErrUnknownOpcode) && !m.cfg.HaltOnUnknownOpcode {
		m.logger.Warn("Skipping unknown instruction", log.Err(err))
		return false
	}
	return true
}

func (m *Machine) timerWork(context.Context) error {
	active := m.timers.Tick()
	if active != m.sound {
		m.sound = active
		if m.beeper != nil {
			m.beeper.Beep(active)
		}
	}
	return nil
}

func (m *Machine) displayWork(context.Context) error {
	if m.renderer != nil {
		m.renderer.Render(m.display.Snapshot())
	}
	return nil
}
