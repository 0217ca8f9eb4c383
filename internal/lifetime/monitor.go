// Package lifetime ends the process once nothing is left to show.
package lifetime

import (
	"context"
	"sync"
	"time"

	"github.com/rook-computer/drawingpanel/internal/logging"
)

// DefaultInterval is how often the monitor polls.
const DefaultInterval = 500 * time.Millisecond

// Snapshot is the state the monitor decides on. All fields are read at the
// same instant.
type Snapshot struct {
	Open        int
	MainRunning bool
	AutoExit    bool
}

// Signals reports the process state the monitor polls.
type Signals interface {
	Snapshot() Snapshot
}

// SignalsFunc adapts a function to Signals.
type SignalsFunc func() Snapshot

func (f SignalsFunc) Snapshot() Snapshot { return f() }

// Monitor polls Signals and exits the process once it is idle.
type Monitor struct {
	signals  Signals
	exit     func(code int)
	interval time.Duration
	log      logging.Logger

	mu         sync.Mutex
	mainExited bool
	exited     bool
}

// New builds a monitor that calls exit(0) when signals allow it.
// A zero interval means DefaultInterval.
func New(signals Signals, exit func(code int), interval time.Duration, log logging.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{signals: signals, exit: exit, interval: interval, log: logging.OrNoop(log)}
}

// Check runs one poll and reports whether termination was requested.
func (m *Monitor) Check() bool {
	snap := m.signals.Snapshot()

	m.mu.Lock()
	// The entry function cannot start again once it has returned.
	if !snap.MainRunning {
		m.mainExited = true
	}
	mainRunning := !m.mainExited
	m.mu.Unlock()

	if !snap.AutoExit || snap.Open != 0 || mainRunning {
		return false
	}

	m.log.Infof("lifetime", "no open surfaces and main finished, exiting")
	m.mu.Lock()
	m.exited = true
	m.mu.Unlock()
	m.terminate()
	return true
}

func (m *Monitor) terminate() {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("lifetime", "exit failed: %v", r)
		}
	}()
	if m.exit != nil {
		m.exit(0)
	}
}

// Exited reports whether the monitor has requested termination.
func (m *Monitor) Exited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited
}

// Run polls until ctx is done or termination has been requested.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Check() {
				return
			}
		}
	}
}
