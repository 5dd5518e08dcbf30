// Package terminal implements a text mode front end that renders the screen,
// captures the keypad and maps debugger hot keys to loop control messages.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
)

// ErrQuit is returned by Run when the user requested to quit.
var ErrQuit = errors.New("quit requested")

// Controller is the machine control surface used by the hot keys.
type Controller interface {
	Control(ctx context.Context, target emulator.Target, msg scheduler.Message) error
	State(target emulator.Target) scheduler.State
	Keyboard() *chip8.Keyboard
}

// Terminal renders frames using termbox and feeds key presses into the
// keypad. Terminals only report key presses, so all keys are released when
// no key event was received for the key timeout.
type Terminal struct {
	logger     *log.Logger
	keyTimeout time.Duration
	bell       io.Writer

	pollEvent func() termbox.Event
	interrupt func() // unblocks a pending pollEvent

	mu         sync.Mutex
	releaseAll *time.Timer
}

// New returns a terminal front end. The bell character is written to the
// bell writer when the sound starts.
func New(logger *log.Logger, keyTimeout time.Duration, bell io.Writer) *Terminal {
	return &Terminal{
		logger:     logger,
		keyTimeout: keyTimeout,
		bell:       bell,
		pollEvent:  termbox.PollEvent,
		interrupt:  termbox.Interrupt,
	}
}

// Init initializes the terminal screen.
func (t *Terminal) Init() error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	return nil
}

// Close restores the terminal and stops the key release timer.
func (t *Terminal) Close() {
	t.mu.Lock()
	if t.releaseAll != nil {
		t.releaseAll.Stop()
	}
	t.mu.Unlock()
	termbox.Close()
}

// Render draws the frame, every pixel is two cells wide.
func (t *Terminal) Render(frame chip8.Frame) {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		t.logger.Error("Clearing terminal failed", log.Err(err))
		return
	}
	for p := range frame.Pixels() {
		termbox.SetCell(2*p.X, p.Y, ' ', termbox.ColorDefault, termbox.ColorWhite)
		termbox.SetCell(2*p.X+1, p.Y, ' ', termbox.ColorDefault, termbox.ColorWhite)
	}
	if err := termbox.Flush(); err != nil {
		t.logger.Error("Flushing terminal failed", log.Err(err))
	}
}

// Beep rings the terminal bell when the sound turns on.
func (t *Terminal) Beep(active bool) {
	if !active || t.bell == nil {
		return
	}
	if _, err := io.WriteString(t.bell, "\a"); err != nil {
		t.logger.Debug("Ringing bell failed", log.Err(err))
	}
}

// Run processes terminal events until the context is cancelled or the user
// quits, in which case ErrQuit is returned.
func (t *Terminal) Run(ctx context.Context, ctrl Controller) error {
	events := make(chan termbox.Event)
	done := make(chan struct{})
	go t.poll(events, done)
	defer func() {
		close(done)
		// the poller keeps polling after done is closed, so the interrupt
		// is always received
		t.interrupt()
		for range events {
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if err := t.handleEvent(ctx, ctrl, ev); err != nil {
				return err
			}
		}
	}
}

// poll forwards terminal events until it receives the interrupt. Events
// received after done is closed are dropped.
func (t *Terminal) poll(events chan<- termbox.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := t.pollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case events <- ev:
		case <-done:
		}
	}
}

func (t *Terminal) handleEvent(ctx context.Context, ctrl Controller, ev termbox.Event) error {
	switch ev.Type {
	case termbox.EventError:
		return fmt.Errorf("polling terminal event: %w", ev.Err)
	case termbox.EventKey:
	default:
		return nil
	}

	if ev.Ch != 0 {
		if key, ok := KeyForRune(ev.Ch); ok {
			t.press(ctrl.Keyboard(), key)
		}
		return nil
	}
	return t.execute(ctx, ctrl, commandForKey(ev.Key))
}

// press marks the key as pressed and restarts the idle timeout after which
// all keys are released.
func (t *Terminal) press(keyboard *chip8.Keyboard, key uint8) {
	keyboard.Press(key)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.releaseAll == nil {
		t.releaseAll = time.AfterFunc(t.keyTimeout, keyboard.Reset)
		return
	}
	t.releaseAll.Reset(t.keyTimeout)
}

func (t *Terminal) execute(ctx context.Context, ctrl Controller, cmd command) error {
	var err error
	switch cmd {
	case commandNone:
		return nil
	case commandQuit:
		return ErrQuit
	case commandStart:
		err = sendAll(ctx, ctrl, scheduler.Start, emulator.CPU, emulator.Timer)
	case commandStop:
		err = sendAll(ctx, ctrl, scheduler.Stop, emulator.CPU, emulator.Timer)
	case commandStep:
		err = ctrl.Control(ctx, emulator.CPU, scheduler.Step)
	case commandToggleTimers:
		msg := scheduler.Start
		if ctrl.State(emulator.Timer) == scheduler.Running {
			msg = scheduler.Stop
		}
		err = ctrl.Control(ctx, emulator.Timer, msg)
	}
	if err != nil {
		return fmt.Errorf("executing hot key: %w", err)
	}
	return nil
}

func sendAll(ctx context.Context, ctrl Controller, msg scheduler.Message, targets ...emulator.Target) error {
	for _, target := range targets {
		if err := ctrl.Control(ctx, target, msg); err != nil {
			return err
		}
	}
	return nil
}
