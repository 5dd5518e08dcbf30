// Package scheduler implements independently paced periodic loops that are
// controlled by asynchronous Start, Stop and Step messages.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Message is a control message sent to a loop.
type Message uint8

const (
	// Start sets the loop to running, work is performed on every tick.
	Start Message = iota + 1
	// Stop sets the loop to stopped, ticks are ignored.
	Stop
	// Step performs exactly one unit of work without changing the run state.
	Step
)

func (m Message) String() string {
	switch m {
	case Start:
		return "start"
	case Stop:
		return "stop"
	case Step:
		return "step"
	default:
		return fmt.Sprintf("message(%d)", uint8(m))
	}
}

// State is the run state of a loop.
type State uint32

const (
	// Stopped ignores ticks, only Step messages perform work.
	Stopped State = iota
	// Running performs a unit of work on every tick.
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// transition returns the state after receiving the message and whether the
// message requests a unit of work.
func transition(state State, msg Message) (State, bool) {
	switch msg {
	case Start:
		return Running, false
	case Stop:
		return Stopped, false
	case Step:
		return state, true
	default:
		return state, false
	}
}

// Work performs a single unit of work of a loop.
type Work func(ctx context.Context) error

// Ticker is the periodic trigger of a loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// controlBufferSize is the number of control messages that can be queued
// before Send blocks.
const controlBufferSize = 8

// Config defines a loop.
type Config struct {
	Name   string
	Period time.Duration
	Work   Work
	State  State // initial run state

	// OnError is called with every error returned by Work and returns
	// whether the loop should be stopped. A nil OnError stops the loop on
	// every error.
	OnError func(err error) bool

	// NewTicker creates the periodic trigger, defaults to a time.Ticker.
	NewTicker func(period time.Duration) Ticker
}

// Loop runs a unit of work periodically while it is running. All work of a
// loop is executed sequentially on the goroutine calling Run.
type Loop struct {
	logger  *log.Logger
	name    string
	period  time.Duration
	work    Work
	onError func(err error) bool

	newTicker func(period time.Duration) Ticker
	control   chan Message

	state atomic.Uint32

	mu      sync.Mutex
	lastErr error
}

// New returns a new loop for the given configuration.
func New(logger *log.Logger, cfg Config) (*Loop, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("loop %s: invalid period %s", cfg.Name, cfg.Period)
	}
	if cfg.Work == nil {
		return nil, fmt.Errorf("loop %s: missing work function", cfg.Name)
	}

	l := &Loop{
		logger:    logger,
		name:      cfg.Name,
		period:    cfg.Period,
		work:      cfg.Work,
		onError:   cfg.OnError,
		newTicker: cfg.NewTicker,
		control:   make(chan Message, controlBufferSize),
	}
	if l.onError == nil {
		l.onError = func(error) bool { return true }
	}
	if l.newTicker == nil {
		l.newTicker = newTimeTicker
	}
	l.state.Store(uint32(cfg.State))
	return l, nil
}

// Name returns the name of the loop.
func (l *Loop) Name() string {
	return l.name
}

// State returns the current run state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Err returns the last error returned by the work function.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Send queues a control message for the loop. It blocks while the control
// queue is full, until the context is cancelled.
func (l *Loop) Send(ctx context.Context, msg Message) error {
	select {
	case l.control <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes control messages and ticks until the context is cancelled.
// Every pass services at most one control message and one tick. A pending
// control message is always handled before a pending tick, a Step is never
// lost behind a tick.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.newTicker(l.period)
	defer ticker.Stop()

	l.logger.Debug("Loop started",
		log.String("loop", l.name),
		log.String("state", l.State().String()),
		log.String("period", l.period.String()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-l.control:
			l.handle(ctx, msg)
			select {
			case <-ticker.C():
				l.tick(ctx)
			default:
			}

		case <-ticker.C():
			select {
			case msg := <-l.control:
				l.handle(ctx, msg)
			default:
			}
			l.tick(ctx)
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg Message) {
	current := l.State()
	next, work := transition(current, msg)
	if next != current {
		l.state.Store(uint32(next))
		l.logger.Debug("Loop state changed",
			log.String("loop", l.name),
			log.String("state", next.String()))
	}
	if work {
		l.runWork(ctx)
	}
}

func (l *Loop) tick(ctx context.Context) {
	if l.State() == Running {
		l.runWork(ctx)
	}
}

func (l *Loop) runWork(ctx context.Context) {
	err := l.work(ctx)
	if err == nil {
		return
	}

	l.mu.Lock()
	l.lastErr = err
	l.mu.Unlock()

	if l.onError(err) {
		l.state.Store(uint32(Stopped))
		l.logger.Error("Loop stopped after error",
			log.String("loop", l.name),
			log.Err(err))
	}
}

type timeTicker struct {
	ticker *time.Ticker
}

func newTimeTicker(period time.Duration) Ticker {
	return timeTicker{ticker: time.NewTicker(period)}
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}
