package emulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type frameRecorder struct {
	frames chan chip8.Frame
}

func (r *frameRecorder) Render(frame chip8.Frame) {
	r.frames <- frame
}

type beepRecorder struct {
	beeps chan bool
}

func (b *beepRecorder) Beep(active bool) {
	b.beeps <- active
}

type testMachine struct {
	*Machine
	tickers map[Target]*manualTicker
	cancel  context.CancelFunc
	result  chan error
}

func newTestMachine(t *testing.T, cfg Config, renderer Renderer, beeper Beeper, program ...uint16) *testMachine {
	t.Helper()
	m := buildTestMachine(t, cfg, renderer, beeper, program...)
	m.start(t)
	return m
}

// buildTestMachine returns a loaded machine with manual tickers that is not
// running yet.
func buildTestMachine(t *testing.T, cfg Config, renderer Renderer, beeper Beeper, program ...uint16) *testMachine {
	t.Helper()

	tickers := map[Target]*manualTicker{}
	for _, target := range Targets {
		tickers[target] = &manualTicker{ch: make(chan time.Time)}
	}
	cfg.NewTicker = func(target Target, _ time.Duration) scheduler.Ticker {
		return tickers[target]
	}

	m, err := New(log.NewTestLogger(t), cfg, renderer, beeper)
	assert.NoError(t, err)

	data := make([]byte, 0, len(program)*2)
	for _, word := range program {
		data = append(data, byte(word>>8), byte(word))
	}
	assert.NoError(t, m.Load(data))

	return &testMachine{
		Machine: m,
		tickers: tickers,
	}
}

func (m *testMachine) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.result = make(chan error, 1)
	go func() {
		m.result <- m.Run(ctx)
	}()
	t.Cleanup(cancel)
}

func pausedConfig() Config {
	cfg := DefaultConfig()
	cfg.Paused = true
	cfg.Random = func() uint8 { return 0 }
	return cfg
}

func (m *testMachine) control(t *testing.T, target Target, msg scheduler.Message) {
	t.Helper()
	assert.NoError(t, m.Control(context.Background(), target, msg))
}

func (m *testMachine) tick(target Target) {
	m.tickers[target].ch <- time.Now()
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimerPeriod = 0
	_, err := New(log.NewTestLogger(t), cfg, nil, nil)
	assert.ErrorContains(t, err, "invalid timer period")
}

func TestLoadTooLarge(t *testing.T) {
	m, err := New(log.NewTestLogger(t), DefaultConfig(), nil, nil)
	assert.NoError(t, err)

	err = m.Load(make([]byte, chip8.MaxProgramSize+1))
	assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))
}

func TestRunStartsAllLoops(t *testing.T) {
	cfg := DefaultConfig()
	m := newTestMachine(t, cfg, nil, nil, 0x1200)

	waitFor(t, func() bool {
		for _, target := range Targets {
			if m.State(target) != scheduler.Running {
				return false
			}
		}
		return true
	})
}

func TestRunCancel(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil, 0x1200)
	m.cancel()

	select {
	case err := <-m.result:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for machine to return")
	}
}

func TestStepCPUWhilePaused(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil,
		0x6005, // LD V0, 5
		0x7003, // ADD V0, 3
	)

	m.control(t, CPU, scheduler.Step)
	waitFor(t, func() bool { return m.Registers().PC == 0x202 })
	assert.Equal(t, uint8(5), m.Registers().V[0])
	assert.Equal(t, scheduler.Stopped, m.State(CPU))

	m.control(t, CPU, scheduler.Step)
	waitFor(t, func() bool { return m.Registers().PC == 0x204 })
	assert.Equal(t, uint8(8), m.Registers().V[0])
}

func TestCPURunsOnTicks(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil,
		0x6001, // LD V0, 1
		0x6102, // LD V1, 2
	)

	m.control(t, CPU, scheduler.Start)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Running })

	m.tick(CPU)
	m.tick(CPU)
	waitFor(t, func() bool { return m.Registers().PC == 0x204 })

	regs := m.Registers()
	assert.Equal(t, uint8(1), regs.V[0])
	assert.Equal(t, uint8(2), regs.V[1])
}

func TestHaltOnUnknownOpcode(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil, 0xFFFF)

	m.control(t, CPU, scheduler.Start)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Running })
	m.tick(CPU)

	waitFor(t, func() bool {
		return m.Err(CPU) != nil && m.State(CPU) == scheduler.Stopped
	})
	assert.True(t, errors.Is(m.Err(CPU), chip8.ErrUnknownOpcode))

	var opErr *chip8.OpcodeError
	assert.True(t, errors.As(m.Err(CPU), &opErr))
	assert.Equal(t, uint16(0xFFFF), opErr.Opcode)
	assert.Equal(t, uint16(0x200), opErr.Address)
}

func TestSkipUnknownOpcode(t *testing.T) {
	cfg := pausedConfig()
	cfg.HaltOnUnknownOpcode = false
	m := newTestMachine(t, cfg, nil, nil,
		0xFFFF, // unknown
		0x6007, // LD V0, 7
	)

	m.control(t, CPU, scheduler.Start)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Running })
	m.tick(CPU)
	m.tick(CPU)

	waitFor(t, func() bool { return m.Registers().V[0] == 7 })
	assert.Equal(t, scheduler.Running, m.State(CPU))
	assert.True(t, errors.Is(m.Err(CPU), chip8.ErrUnknownOpcode))
}

func TestTimerCountdown(t *testing.T) {
	beeper := &beepRecorder{beeps: make(chan bool, 4)}
	m := newTestMachine(t, pausedConfig(), nil, beeper,
		0x6003, // LD V0, 3
		0xF015, // LD DT, V0
		0x6102, // LD V1, 2
		0xF118, // LD ST, V1
	)

	for range 4 {
		m.control(t, CPU, scheduler.Step)
	}
	waitFor(t, func() bool { return m.Registers().PC == 0x208 })

	delay, sound := m.Timers()
	assert.Equal(t, uint8(3), delay)
	assert.Equal(t, uint8(2), sound)

	m.control(t, Timer, scheduler.Start)
	waitFor(t, func() bool { return m.State(Timer) == scheduler.Running })

	m.tick(Timer)
	assert.True(t, <-beeper.beeps)
	m.tick(Timer)
	assert.False(t, <-beeper.beeps)
	m.tick(Timer)
	waitFor(t, func() bool {
		delay, _ := m.Timers()
		return delay == 0
	})

	m.tick(Timer)
	m.tick(Timer)
	delay, sound = m.Timers()
	assert.Equal(t, uint8(0), delay)
	assert.Equal(t, uint8(0), sound)

	select {
	case active := <-beeper.beeps:
		t.Fatalf("unexpected beep change to %t", active)
	default:
	}
}

func TestDisplayStep(t *testing.T) {
	renderer := &frameRecorder{frames: make(chan chip8.Frame, 1)}
	m := newTestMachine(t, pausedConfig(), renderer, nil,
		0x6000, // LD V0, 0
		0xF029, // LD F, V0
		0xD005, // DRW V0, V0, 5
	)

	for range 3 {
		m.control(t, CPU, scheduler.Step)
	}
	waitFor(t, func() bool { return m.Registers().PC == 0x206 })

	m.control(t, Display, scheduler.Step)
	frame := <-renderer.frames

	// first row of glyph 0 is 0xF0
	assert.True(t, frame.Pixel(0, 0))
	assert.True(t, frame.Pixel(3, 0))
	assert.False(t, frame.Pixel(4, 0))
	assert.Equal(t, m.Frame(), frame)
	assert.Equal(t, scheduler.Stopped, m.State(Display))
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil,
		0x6101, // LD V1, 1
		0xF30A, // LD V3, K
	)

	m.control(t, CPU, scheduler.Step)
	m.control(t, CPU, scheduler.Step)
	m.control(t, CPU, scheduler.Step)
	m.control(t, CPU, scheduler.Start)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Running })
	assert.Equal(t, uint16(0x202), m.Registers().PC)

	m.control(t, CPU, scheduler.Stop)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Stopped })

	m.Keyboard().Press(0xB)
	m.control(t, CPU, scheduler.Step)
	waitFor(t, func() bool { return m.Registers().PC == 0x204 })
	assert.Equal(t, uint8(0xB), m.Registers().V[3])
}

func TestControlUnknownTarget(t *testing.T) {
	m, err := New(log.NewTestLogger(t), DefaultConfig(), nil, nil)
	assert.NoError(t, err)

	err = m.Control(context.Background(), Target(7), scheduler.Step)
	assert.ErrorContains(t, err, "unknown loop target")
	assert.Equal(t, scheduler.Stopped, m.State(Target(7)))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "cpu", CPU.String())
	assert.Equal(t, "timer", Timer.String())
	assert.Equal(t, "display", Display.String())
	assert.Equal(t, "target(5)", Target(5).String())
}

func TestRegisterAccess(t *testing.T) {
	m := newTestMachine(t, pausedConfig(), nil, nil,
		0x8124, // ADD V1, V2
	)

	assert.NoError(t, m.SetRegister(1, 0x10))
	assert.NoError(t, m.SetRegister(2, 0x20))
	m.control(t, CPU, scheduler.Step)
	waitFor(t, func() bool { return m.Registers().PC == 0x202 })

	value, err := m.Register(1)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x30), value)

	_, err = m.Register(chip8.RegisterCount)
	assert.True(t, errors.Is(err, chip8.ErrRegisterOutOfRange))
	err = m.SetRegister(-1, 0)
	assert.True(t, errors.Is(err, chip8.ErrRegisterOutOfRange))
}

// runSteps executes the program step by step and returns the final
// registers and the traced instructions.
func runSteps(t *testing.T, trace bool, steps int, program ...uint16) (chip8.Registers, []chip8.Step) {
	t.Helper()

	cfg := pausedConfig()
	cfg.Trace = trace
	m := buildTestMachine(t, cfg, nil, nil, program...)

	traced := make(chan chip8.Step, steps)
	m.trace = func(step chip8.Step) {
		traced <- step
	}
	m.start(t)

	for range steps {
		m.control(t, CPU, scheduler.Step)
	}
	// control messages are handled in order, the state change proves that
	// all steps were executed
	m.control(t, CPU, scheduler.Start)
	waitFor(t, func() bool { return m.State(CPU) == scheduler.Running || m.Err(CPU) != nil })
	m.cancel()
	<-m.result

	close(traced)
	var recorded []chip8.Step
	for step := range traced {
		recorded = append(recorded, step)
	}
	return m.Registers(), recorded
}

func TestTraceDoesNotChangeExecution(t *testing.T) {
	program := []uint16{
		0x6005, // LD V0, 5
		0x7003, // ADD V0, 3
		0x8104, // ADD V1, V0
		0xA300, // LD I, $300
	}

	plain, untraced := runSteps(t, false, 4, program...)
	traced, steps := runSteps(t, true, 4, program...)

	assert.Len(t, untraced, 0)
	assert.Equal(t, plain, traced)
	assert.Equal(t, uint16(0x208), traced.PC)
	assert.Equal(t, uint8(8), traced.V[1])

	assert.Len(t, steps, 4)
	for i, step := range steps {
		assert.True(t, step.Fetched)
		assert.Equal(t, uint16(0x200+2*i), step.Address)
		assert.Equal(t, program[i], step.Operation.Opcode)
	}
}

func TestTraceSkipsFetchFault(t *testing.T) {
	// JP $FFF, the fetch at $FFF reads beyond memory
	regs, steps := runSteps(t, true, 2, 0x1FFF)

	assert.Equal(t, uint16(0xFFF), regs.PC)
	assert.Len(t, steps, 1)
	assert.Equal(t, uint16(0x1FFF), steps[0].Operation.Opcode)
}

func TestControlCancelledNamesLoop(t *testing.T) {
	m, err := New(log.NewTestLogger(t), DefaultConfig(), nil, nil)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// nothing drains the control queue, fill it until Send observes the
	// cancelled context
	for {
		err = m.Control(ctx, Display, scheduler.Step)
		if err != nil {
			break
		}
	}
	assert.ErrorContains(t, err, "sending step to display loop")
	assert.True(t, errors.Is(err, context.Canceled))
}
