// Package schedule drives a repaint action at a steady rate.
//
// Every tick's deadline is computed from a fixed reference time
// (reference + n*delay), never from the previous tick's actual fire time,
// so sleep imprecision does not accumulate into drift. A late tick is
// caught up immediately instead of pushing later ticks back.
package schedule

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/drawingpanel/internal/logging"
)

// DefaultTolerance is the remaining-time threshold under which the loop
// waits out the whole remainder instead of a fraction of it.
const DefaultTolerance = time.Millisecond

// ErrInvalidRate is returned for a rate below one tick per second.
var ErrInvalidRate = errors.New("rate must be at least 1")

// Clock is the time source the loop reads and waits on.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTolerance sets how close to the deadline the loop switches from
// partial waits to waiting out the remainder.
func WithTolerance(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.tolerance = d
		}
	}
}

func WithLogger(l logging.Logger, component string) Option {
	return func(s *Scheduler) {
		s.log = logging.OrNoop(l)
		if component != "" {
			s.component = component
		}
	}
}

// Scheduler calls an action rate times a second on one goroutine.
type Scheduler struct {
	action    func()
	clock     Clock
	tolerance time.Duration
	log       logging.Logger
	component string

	mu        sync.Mutex
	delay     time.Duration
	reference time.Time
	ticks     int64
	phase     uint64

	fired atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// Delay converts a rate in ticks per second to the per-tick delay.
func Delay(rate int) time.Duration {
	return time.Duration(int64(time.Second) / int64(rate))
}

// New builds a stopped scheduler for action at rate ticks per second.
// Start or Run begins the loop.
func New(action func(), rate int, opts ...Option) (*Scheduler, error) {
	if action == nil {
		return nil, errors.New("schedule: nil action")
	}
	if rate < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}
	s := &Scheduler{
		action:    action,
		clock:     SystemClock{},
		tolerance: DefaultTolerance,
		log:       logging.NoopLogger{},
		component: "scheduler",
		delay:     Delay(rate),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start runs the loop on its own goroutine. Only the first call has effect.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() { go s.loop() })
}

// Run runs the loop on the calling goroutine until Stop. It returns at once
// if the loop was already started or stopped.
func (s *Scheduler) Run() {
	run := false
	s.startOnce.Do(func() { run = true })
	if run {
		s.loop()
	}
}

// Stop asks the loop to exit. An action already running completes; no new
// action starts after the loop observes the request.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	// A loop that never started still reports done.
	s.startOnce.Do(func() { close(s.done) })
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// SetRate replaces the delay and starts a fresh phase: the reference moves
// to now and the tick counter restarts at zero.
func (s *Scheduler) SetRate(rate int) error {
	if rate < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}
	s.mu.Lock()
	s.delay = Delay(rate)
	s.reference = s.clock.Now()
	s.ticks = 0
	s.phase++
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// Ticks returns the number of ticks fired in the current phase.
func (s *Scheduler) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Fired returns the number of completed actions since the loop started.
func (s *Scheduler) Fired() int64 { return s.fired.Load() }

func (s *Scheduler) nextDue() (time.Time, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference.Add(time.Duration(s.ticks+1) * s.delay), s.phase
}

func (s *Scheduler) loop() {
	defer close(s.done)

	s.mu.Lock()
	s.reference = s.clock.Now()
	s.ticks = 0
	s.mu.Unlock()

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		target, phase := s.nextDue()
		if remaining := target.Sub(s.clock.Now()); remaining > 0 {
			select {
			case <-s.quit:
				return
			case <-s.clock.After(s.backoff(remaining)):
			}
			continue
		}

		s.fire()

		s.mu.Lock()
		// A rate change during the action already started a new phase.
		if s.phase == phase {
			s.ticks++
		}
		s.mu.Unlock()
	}
}

// backoff returns how long to wait with remaining time left before the
// deadline: a fraction of it while far away, all of it when close.
func (s *Scheduler) backoff(remaining time.Duration) time.Duration {
	if remaining <= s.tolerance {
		return remaining
	}
	return remaining / 8 * 7
}

func (s *Scheduler) fire() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf(s.component, "action panicked: %v", r)
		}
	}()
	s.action()
	s.fired.Add(1)
}
