package panel

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gg"

	"github.com/rook-computer/drawingpanel/internal/display"
	"github.com/rook-computer/drawingpanel/internal/lifetime"
	"github.com/rook-computer/drawingpanel/internal/logging"
)

// Registry is the process-scoped state shared by surfaces: open and total
// surface counters, the auto-exit switch, the main-finished signal and the
// display. Its lifetime monitor starts with the first surface and runs
// until the process exits or Shutdown is called.
type Registry struct {
	cfg      Config
	log      logging.Logger
	display  display.Display
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	open         int
	total        int
	autoExit     bool
	mainFinished bool
	exit         func(code int)

	monitorOnce sync.Once
	monitor     *lifetime.Monitor

	// running is set once some goroutine drives the display.
	running atomic.Bool
}

type RegistryOption func(*Registry)

// WithDisplay replaces the display built from Config.Backend.
func WithDisplay(d display.Display) RegistryOption {
	return func(r *Registry) { r.display = d }
}

func WithLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) { r.log = logging.OrNoop(l) }
}

// WithExit replaces os.Exit as the monitor's termination hook.
func WithExit(exit func(code int)) RegistryOption {
	return func(r *Registry) { r.exit = exit }
}

// WithMonitorInterval sets the lifetime poll interval.
func WithMonitorInterval(d time.Duration) RegistryOption {
	return func(r *Registry) { r.interval = d }
}

func NewRegistry(cfg Config, opts ...RegistryOption) (*Registry, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		cfg:      cfg,
		log:      logging.NoopLogger{},
		interval: lifetime.DefaultInterval,
		ctx:      ctx,
		cancel:   cancel,
		autoExit: cfg.AutoExit,
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.display == nil {
		d, err := NewDisplay(cfg, r.log)
		if err != nil {
			cancel()
			return nil, err
		}
		r.display = d
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// DefaultRegistry returns the process-wide registry, configured from the
// environment on first use.
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		cfg, err := ConfigFromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		l, err := openDebugLog(cfg.DebugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "drawingpanel: %v\n", err)
		}
		if fl, ok := l.(logging.FileLogger); ok {
			gg.SetLogger(logging.Slog(fl.Writer()))
		}
		defaultRegistry, defaultErr = NewRegistry(cfg, WithLogger(l))
	})
	return defaultRegistry, defaultErr
}

// Logger returns the registry's logger.
func (r *Registry) Logger() logging.Logger { return r.log }

// Display returns the display surfaces open their windows on.
func (r *Registry) Display() display.Display { return r.display }

// register counts a new surface and returns its diagnostic id.
func (r *Registry) register() int {
	r.mu.Lock()
	r.open++
	r.total++
	id := r.total
	r.mu.Unlock()
	r.startMonitor()
	r.startDisplay()
	return id
}

func (r *Registry) unregister() {
	r.mu.Lock()
	if r.open > 0 {
		r.open--
	}
	r.mu.Unlock()
}

// Open reports the number of surfaces not yet closed.
func (r *Registry) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

// Total reports how many surfaces have ever been created.
func (r *Registry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// SetAutoExit enables or disables exiting once every surface is closed and
// main has finished. It takes effect at the next poll.
func (r *Registry) SetAutoExit(enabled bool) {
	r.mu.Lock()
	r.autoExit = enabled
	r.mu.Unlock()
}

// MarkMainFinished records that the client's entry function has returned.
func (r *Registry) MarkMainFinished() {
	r.mu.Lock()
	r.mainFinished = true
	r.mu.Unlock()
	r.log.Infof("registry", "main finished")
}

// Snapshot implements lifetime.Signals.
func (r *Registry) Snapshot() lifetime.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lifetime.Snapshot{Open: r.open, MainRunning: !r.mainFinished, AutoExit: r.autoExit}
}

func (r *Registry) setExit(exit func(code int)) {
	r.mu.Lock()
	r.exit = exit
	r.mu.Unlock()
}

func (r *Registry) terminate(code int) {
	r.mu.Lock()
	exit := r.exit
	r.mu.Unlock()
	exit(code)
}

func (r *Registry) startMonitor() {
	r.monitorOnce.Do(func() {
		r.monitor = lifetime.New(r, r.terminate, r.interval, r.log)
		go r.monitor.Run(r.ctx)
	})
}

// mainThreadDisplay is implemented by displays whose event loop must own
// the main goroutine; those only run inside Main.
type mainThreadDisplay interface {
	NeedsMainThread() bool
}

// startDisplay runs the display in the background for surfaces created
// outside Main.
func (r *Registry) startDisplay() {
	if m, ok := r.display.(mainThreadDisplay); ok && m.NeedsMainThread() {
		return
	}
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		if err := r.display.Run(r.ctx); err != nil {
			r.log.Errorf("registry", "display stopped: %v", err)
		}
	}()
}

// Main runs fn as the program's entry function. The display is driven on
// the calling goroutine, which must be the main goroutine for the ebiten
// backend. Main returns fn's error once the lifetime monitor decides the
// program is done: every surface closed, fn returned and auto-exit enabled.
func (r *Registry) Main(fn func() error) error {
	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()
	r.setExit(func(int) { cancel() })

	result := make(chan error, 1)
	go func() {
		var err error
		defer r.MarkMainFinished()
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("main panicked: %v", p)
			}
			if err != nil {
				r.log.Errorf("registry", "main returned error: %v", err)
			}
			result <- err
		}()
		err = fn()
	}()
	r.startMonitor()

	if r.running.CompareAndSwap(false, true) {
		if err := r.display.Run(ctx); err != nil {
			r.log.Errorf("registry", "display stopped: %v", err)
		}
	} else {
		r.log.Infof("registry", "display already running in the background")
	}
	<-ctx.Done()
	select {
	case err := <-result:
		return err
	default:
		return nil
	}
}

// Shutdown stops the monitor and the background display. Open surfaces are
// not closed.
func (r *Registry) Shutdown() { r.cancel() }
