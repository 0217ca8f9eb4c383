// Package panel provides persistent drawing surfaces: windows backed by an
// in-memory ARGB pixel buffer that is repainted at a fixed frame rate.
//
//	func main() {
//		panel.Main(func() error {
//			s, err := panel.New(400, 300)
//			if err != nil {
//				return err
//			}
//			s.Draw(func(dc *gg.Context) {
//				dc.SetRGB(1, 0, 0)
//				dc.DrawCircle(200, 150, 50)
//				dc.Fill()
//			})
//			return nil
//		})
//	}
package panel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/display"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
	"github.com/rook-computer/drawingpanel/internal/layout"
	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/internal/schedule"
)

const (
	DefaultTitle     = "Drawing Panel"
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultFrameRate = 30
	// MaxSize bounds both surface dimensions.
	MaxSize = 7680
	// DefaultBackground is opaque white.
	DefaultBackground uint32 = 0xFFFFFFFF
)

// Surface is one window and its pixel buffer. Methods are safe to call from
// any goroutine; pixel writes are not synchronized with repaints, so a frame may
// show a partial update.
type Surface struct {
	id   int
	reg  *Registry
	log  logging.Logger
	comp string

	events *event.Dispatcher
	win    display.Window
	sched  *schedule.Scheduler

	mu        sync.RWMutex
	buf       *framebuffer.Buffer
	bg        uint32
	antiAlias bool
	visible   bool
	title     string
	rate      int

	ready        chan struct{}
	closePending atomic.Bool
	closing      atomic.Bool
	closed       chan struct{}
}

type options struct {
	visible  bool
	title    string
	rate     int
	registry *Registry
}

type Option func(*options)

// Hidden creates the surface without showing its window.
func Hidden() Option { return func(o *options) { o.visible = false } }

func WithTitle(title string) Option { return func(o *options) { o.title = title } }

// WithFrameRate sets the initial repaint rate in frames per second.
func WithFrameRate(rate int) Option { return func(o *options) { o.rate = rate } }

// WithRegistry attaches the surface to r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option { return func(o *options) { o.registry = r } }

func checkSize(width, height int) error {
	if width < 1 || width > MaxSize {
		return fmt.Errorf("width %d must be between 1 and %d: %w", width, MaxSize, ErrInvalidArgument)
	}
	if height < 1 || height > MaxSize {
		return fmt.Errorf("height %d must be between 1 and %d: %w", height, MaxSize, ErrInvalidArgument)
	}
	return nil
}

// New opens a width x height surface. Both dimensions must be in
// [1, MaxSize]. The buffer starts fully transparent.
func New(width, height int, opts ...Option) (*Surface, error) {
	o := options{visible: true, title: DefaultTitle, rate: DefaultFrameRate}
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if o.rate < 1 {
		return nil, fmt.Errorf("frame rate %d must be positive: %w", o.rate, ErrInvalidArgument)
	}
	reg := o.registry
	if reg == nil {
		var err error
		if reg, err = DefaultRegistry(); err != nil {
			return nil, err
		}
	}

	id := reg.register()
	s := &Surface{
		id:        id,
		reg:       reg,
		log:       reg.log,
		comp:      fmt.Sprintf("surface-%d", id),
		events:    event.NewDispatcher(),
		buf:       framebuffer.New(width, height),
		bg:        DefaultBackground,
		antiAlias: true,
		visible:   o.visible,
		title:     o.title,
		rate:      o.rate,
		ready:     make(chan struct{}),
		closed:    make(chan struct{}),
	}
	s.log.Infof(s.comp, "new surface requested, width=%d height=%d visible=%t", width, height, o.visible)

	sched, err := schedule.New(s.repaint, o.rate, schedule.WithLogger(s.log, s.comp))
	if err != nil {
		reg.unregister()
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	s.sched = sched

	win, err := reg.display.Open(display.WindowConfig{
		ID:         id,
		Title:      o.title,
		Width:      width,
		Height:     height,
		Visible:    o.visible,
		Background: framebuffer.ToColor(s.bg),
		Smooth:     s.antiAlias,
		OnClose:    s.userClosed,
	}, s.events)
	if err != nil {
		reg.unregister()
		return nil, fmt.Errorf("open window for surface %d: %w", id, err)
	}
	s.win = win
	sched.Start()
	close(s.ready)
	s.log.Infof(s.comp, "painting started at %d fps", o.rate)

	// The window may have been closed while it was being opened.
	if s.closePending.Load() {
		s.Close()
	}
	return s, nil
}

// userClosed handles a close request from the window. A request that
// arrives before New has finished is deferred until it has.
func (s *Surface) userClosed() {
	select {
	case <-s.ready:
		s.Close()
		return
	default:
	}
	s.closePending.Store(true)
	select {
	case <-s.ready:
		s.Close()
	default:
	}
}

// NewDefault opens a DefaultWidth x DefaultHeight surface.
func NewDefault(opts ...Option) (*Surface, error) {
	return New(DefaultWidth, DefaultHeight, opts...)
}

// ID is the surface's diagnostic number, unique within its registry.
func (s *Surface) ID() int { return s.id }

// Width returns the buffer width in pixels.
func (s *Surface) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Width
}

// Height returns the buffer height in pixels.
func (s *Surface) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Height
}

func (s *Surface) buffer() *framebuffer.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf
}

func (s *Surface) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Surface) repaint() {
	if s.isClosed() {
		return
	}
	s.win.Present(s.buffer())
}

// Repaint pushes the current buffer to the window without waiting for the
// next tick.
func (s *Surface) Repaint() {
	s.repaint()
}

// SetFrameRate changes the repaint rate. The new rate starts a fresh
// schedule from now.
func (s *Surface) SetFrameRate(rate int) error {
	if rate < 1 {
		return fmt.Errorf("frame rate %d must be positive: %w", rate, ErrInvalidArgument)
	}
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.sched.SetRate(rate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	s.log.Infof(s.comp, "set frame rate to %d fps", rate)
	return nil
}

// FrameRate returns the current repaint rate.
func (s *Surface) FrameRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// AddListener attaches l to every event channel whose listener interface it
// implements and reports those channels. A value implementing none of them
// is rejected.
func (s *Surface) AddListener(l any) (event.Capability, error) {
	if l == nil {
		return 0, fmt.Errorf("nil listener: %w", ErrInvalidArgument)
	}
	c := s.events.Add(l)
	if c == 0 {
		return 0, fmt.Errorf("%T implements no listener interface: %w", l, ErrInvalidArgument)
	}
	s.log.Infof(s.comp, "added listener %T for %s", l, c)
	return c, nil
}

// Resize replaces the buffer with a width x height one. Existing pixels stay
// anchored at the origin; pixels outside the new bounds are dropped and new
// area is transparent.
func (s *Surface) Resize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	if s.buf.Width == width && s.buf.Height == height {
		s.mu.Unlock()
		return nil
	}
	s.buf = s.buf.Resized(width, height)
	s.mu.Unlock()
	s.win.Resize(width, height)
	s.log.Infof(s.comp, "resized to %dx%d", width, height)
	return nil
}

func (s *Surface) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	s.win.SetTitle(title)
}

func (s *Surface) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SetAlwaysOnTop asks the window to stay above other windows. Displays that
// cannot honor it return ErrPermissionDenied; a closed surface returns
// ErrClosed.
func (s *Surface) SetAlwaysOnTop(onTop bool) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.win.SetAlwaysOnTop(onTop); err != nil {
		if errors.Is(err, display.ErrUnsupported) {
			return fmt.Errorf("set always-on-top: %v: %w", err, ErrPermissionDenied)
		}
		return fmt.Errorf("set always-on-top: %w", err)
	}
	return nil
}

// SetPosition moves the window's top-left corner to (x, y) on screen.
func (s *Surface) SetPosition(x, y int) { s.win.SetPosition(x, y) }

// Position returns the window's top-left corner on screen.
func (s *Surface) Position() (x, y int) { return s.win.Position() }

// Center moves the window to the middle of the screen, never past its
// top-left corner.
func (s *Surface) Center() {
	sw, sh := s.win.ScreenSize()
	s.mu.RLock()
	w, h := s.buf.Width, s.buf.Height
	s.mu.RUnlock()
	p := layout.Center(image.Rect(0, 0, sw, sh), w, h)
	s.win.SetPosition(p.X, p.Y)
}

// ToFront raises the window above other windows where the display allows.
func (s *Surface) ToFront() { s.win.ToFront() }

func (s *Surface) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
	s.win.SetVisible(visible)
}

func (s *Surface) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetAntiAlias toggles smoothing when the window scales the frame and when
// images are drawn scaled.
func (s *Surface) SetAntiAlias(antiAlias bool) {
	s.mu.Lock()
	changed := s.antiAlias != antiAlias
	s.antiAlias = antiAlias
	s.mu.Unlock()
	if changed {
		s.win.SetSmooth(antiAlias)
	}
}

func (s *Surface) AntiAlias() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.antiAlias
}

// SetBackground sets the color the window shows behind transparent pixels.
func (s *Surface) SetBackground(c color.Color) error {
	if c == nil {
		return fmt.Errorf("nil background color: %w", ErrInvalidArgument)
	}
	s.SetBackgroundARGB(framebuffer.FromColor(c))
	return nil
}

// SetBackgroundARGB is SetBackground for a packed ARGB value.
func (s *Surface) SetBackgroundARGB(argb uint32) {
	s.mu.Lock()
	s.bg = argb
	s.mu.Unlock()
	s.win.SetBackground(framebuffer.ToColor(argb))
}

func (s *Surface) Background() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bg
}

// Close stops repainting, closes the window and releases the surface's slot
// in the registry. It waits for an in-flight repaint to finish. Only the
// first call does the work; later calls, including one made from a
// WindowClosed listener while the first is running, return nil at once.
func (s *Surface) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	close(s.closed)
	s.sched.Stop()
	<-s.sched.Done()
	err := s.win.Close()
	s.reg.unregister()
	s.log.Infof(s.comp, "closed after %d repaints", s.sched.Fired())
	return err
}

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool { return s.isClosed() }
