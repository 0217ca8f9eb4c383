package lifetime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCheckRequiresAllConditions(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		exit bool
	}{
		{"all met", Snapshot{Open: 0, MainRunning: false, AutoExit: true}, true},
		{"surface open", Snapshot{Open: 1, MainRunning: false, AutoExit: true}, false},
		{"main running", Snapshot{Open: 0, MainRunning: true, AutoExit: true}, false},
		{"auto exit off", Snapshot{Open: 0, MainRunning: false, AutoExit: false}, false},
		{"nothing met", Snapshot{Open: 3, MainRunning: true, AutoExit: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var code = -1
			m := New(SignalsFunc(func() Snapshot { return tt.snap }), func(c int) { code = c }, 0, nil)
			if got := m.Check(); got != tt.exit {
				t.Errorf("Check() = %v, want %v", got, tt.exit)
			}
			if tt.exit && code != 0 {
				t.Errorf("exit code = %d, want 0", code)
			}
			if !tt.exit && code != -1 {
				t.Errorf("exit called with %d, want no call", code)
			}
			if m.Exited() != tt.exit {
				t.Errorf("Exited() = %v, want %v", m.Exited(), tt.exit)
			}
		})
	}
}

func TestMainExitIsCached(t *testing.T) {
	snap := Snapshot{Open: 1, MainRunning: false, AutoExit: true}
	var exits int
	m := New(SignalsFunc(func() Snapshot { return snap }), func(int) { exits++ }, 0, nil)

	if m.Check() {
		t.Fatal("should not exit with an open surface")
	}
	// A stale "running" reading after main has finished is ignored.
	snap = Snapshot{Open: 0, MainRunning: true, AutoExit: true}
	if !m.Check() {
		t.Fatal("main was already observed finished; expected exit")
	}
	if exits != 1 {
		t.Errorf("exits = %d, want 1", exits)
	}
}

func TestExitPanicIsSwallowed(t *testing.T) {
	m := New(SignalsFunc(func() Snapshot { return Snapshot{AutoExit: true} }), func(int) { panic("denied") }, 0, nil)
	if !m.Check() {
		t.Error("Check should still report the termination attempt")
	}
}

func TestRunStopsAfterExit(t *testing.T) {
	var open atomic.Int64
	open.Store(1)
	var exits atomic.Int64
	m := New(SignalsFunc(func() Snapshot {
		return Snapshot{Open: int(open.Load()), AutoExit: true}
	}), func(int) { exits.Add(1) }, 5*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if exits.Load() != 0 {
		t.Fatal("exited while a surface was open")
	}
	open.Store(0)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after exit")
	}
	if exits.Load() != 1 {
		t.Errorf("exits = %d, want 1", exits.Load())
	}
}

func TestRunHonorsContext(t *testing.T) {
	m := New(SignalsFunc(func() Snapshot { return Snapshot{Open: 1} }), func(int) {
		t.Error("unexpected exit")
	}, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored cancellation")
	}
}
