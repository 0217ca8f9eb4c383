package schedule

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock advances only when the loop waits or the action runs. Waits
// oversleep by a random amount to imitate an imprecise system timer.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	rng   *rand.Rand
	after func(now time.Time)
}

func newFakeClock(seed uint64) *fakeClock {
	return &fakeClock{
		now: time.Unix(1000, 0),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	hook := c.after
	c.mu.Unlock()
	if hook != nil {
		hook(now)
	}
	return now
}

func (c *fakeClock) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.rng.Int64N(int64(max)))
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	now := c.advance(d + c.jitter(d/2+1))
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func TestNewRejectsInvalidRate(t *testing.T) {
	for _, rate := range []int{0, -1, -30} {
		if _, err := New(func() {}, rate); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("New(rate=%d) err = %v, want ErrInvalidRate", rate, err)
		}
	}
}

func TestDelay(t *testing.T) {
	tests := []struct {
		rate int
		want time.Duration
	}{
		{1, time.Second},
		{30, 33333333 * time.Nanosecond},
		{60, 16666666 * time.Nanosecond},
		{1000, time.Millisecond},
	}
	for _, tt := range tests {
		if got := Delay(tt.rate); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestNoCumulativeDrift(t *testing.T) {
	tests := []struct {
		rate   int
		window time.Duration
		seed   uint64
	}{
		{30, 10 * time.Second, 1},
		{60, 5 * time.Second, 2},
		{7, 20 * time.Second, 3},
		{144, 3 * time.Second, 4},
	}
	for _, tt := range tests {
		clock := newFakeClock(tt.seed)
		start := clock.Now()
		delay := Delay(tt.rate)

		var s *Scheduler
		var fired int64
		clock.after = func(now time.Time) {
			if now.Sub(start) >= tt.window {
				s.Stop()
			}
		}
		s, err := New(func() {
			fired++
			// Painting takes an uneven slice of the frame.
			clock.advance(clock.jitter(delay / 10))
		}, tt.rate, WithClock(clock))
		if err != nil {
			t.Fatal(err)
		}
		s.Run()

		want := int64(tt.window / delay)
		if diff := fired - want; diff < -1 || diff > 1 {
			t.Errorf("rate %d over %v: fired %d ticks, want %d +/- 1", tt.rate, tt.window, fired, want)
		}
	}
}

func TestLateTickCatchesUp(t *testing.T) {
	clock := newFakeClock(7)
	start := clock.Now()
	delay := Delay(10)
	window := 2 * time.Second

	var s *Scheduler
	var fired int64
	clock.after = func(now time.Time) {
		if now.Sub(start) >= window {
			s.Stop()
		}
	}
	s, _ = New(func() {
		fired++
		if fired == 3 {
			// One very slow repaint, five frames long.
			clock.advance(5 * delay)
		}
	}, 10, WithClock(clock))
	s.Run()

	if want := int64(window / delay); fired < want-1 || fired > want+1 {
		t.Errorf("fired %d ticks, want %d +/- 1", fired, want)
	}
}

func TestSetRateStartsFreshPhase(t *testing.T) {
	clock := newFakeClock(11)
	start := clock.Now()

	var s *Scheduler
	var fires []time.Time
	var changedAt time.Time
	clock.after = func(now time.Time) {
		if now.Sub(start) >= 3*time.Second {
			s.Stop()
		}
	}
	s, _ = New(func() {
		now := clock.Now()
		fires = append(fires, now)
		if len(fires) == 3 {
			changedAt = now
			if err := s.SetRate(2); err != nil {
				t.Errorf("SetRate: %v", err)
			}
		}
	}, 10, WithClock(clock))
	s.Run()

	if len(fires) < 4 {
		t.Fatalf("only %d fires", len(fires))
	}
	if gap := fires[3].Sub(changedAt); gap < 500*time.Millisecond {
		t.Errorf("first tick after rate change came %v later, want >= 500ms", gap)
	}
	if got := s.Delay(); got != 500*time.Millisecond {
		t.Errorf("Delay = %v, want 500ms", got)
	}
}

func TestSetRateResetsCounters(t *testing.T) {
	clock := newFakeClock(5)
	s, _ := New(func() {}, 30, WithClock(clock))
	clock.advance(time.Second)
	if err := s.SetRate(0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("SetRate(0) err = %v, want ErrInvalidRate", err)
	}
	if err := s.SetRate(4); err != nil {
		t.Fatal(err)
	}
	next, _ := s.nextDue()
	if want := clock.Now().Add(250 * time.Millisecond); !next.Equal(want) {
		t.Errorf("next due = %v, want %v", next, want)
	}
	if s.Ticks() != 0 {
		t.Errorf("Ticks = %d, want 0", s.Ticks())
	}
}

func TestBackoff(t *testing.T) {
	s, _ := New(func() {}, 30, WithTolerance(2*time.Millisecond))
	if got := s.backoff(time.Millisecond); got != time.Millisecond {
		t.Errorf("near deadline backoff = %v, want full remainder", got)
	}
	if got := s.backoff(16 * time.Millisecond); got != 14*time.Millisecond {
		t.Errorf("far backoff = %v, want 14ms", got)
	}
}

func TestStopHaltsActions(t *testing.T) {
	var calls atomic.Int64
	s, _ := New(func() { calls.Add(1) }, 500)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("scheduler never fired, calls=%d", calls.Load())
	}

	s.Stop()
	<-s.Done()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Errorf("calls went from %d to %d after Stop", after, got)
	}
	if s.Fired() != after {
		t.Errorf("Fired = %d, want %d", s.Fired(), after)
	}
}

func TestStopBeforeStart(t *testing.T) {
	s, _ := New(func() { t.Error("action ran after Stop") }, 30)
	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed for a scheduler that never started")
	}
	s.Start()
	s.Run()
}

func TestPanickingActionIsRecovered(t *testing.T) {
	var calls atomic.Int64
	s, _ := New(func() {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}, 500)
	s.Start()
	defer func() {
		s.Stop()
		<-s.Done()
	}()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("loop did not continue after panic, calls=%d", calls.Load())
	}
}
