package display

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
)

// Headless keeps windows in memory. It backs tests and displayless hosts.
type Headless struct {
	Screen image.Rectangle

	mu      sync.Mutex
	windows []*HeadlessWindow
}

func NewHeadless() *Headless { return &Headless{Screen: DefaultScreen} }

func (h *Headless) Open(cfg WindowConfig, sink event.Sink) (Window, error) {
	w := &HeadlessWindow{
		cfg:     cfg,
		sink:    sink,
		screen:  h.Screen,
		visible: cfg.Visible,
		width:   cfg.Width,
		height:  cfg.Height,
		title:   cfg.Title,
		smooth:  cfg.Smooth,
		bg:      cfg.Background,
	}
	h.mu.Lock()
	h.windows = append(h.windows, w)
	h.mu.Unlock()
	sink.WindowOpened(event.WindowEvent{SurfaceID: cfg.ID})
	return w, nil
}

func (h *Headless) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Windows returns every window opened so far, closed ones included.
func (h *Headless) Windows() []*HeadlessWindow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*HeadlessWindow(nil), h.windows...)
}

type HeadlessWindow struct {
	cfg    WindowConfig
	sink   event.Sink
	screen image.Rectangle

	mu       sync.Mutex
	frames   int
	last     *image.NRGBA
	width    int
	height   int
	title    string
	x, y     int
	visible  bool
	onTop    bool
	smooth   bool
	bg       color.Color
	closed   bool
	toFronts int
}

func (w *HeadlessWindow) Present(frame *framebuffer.Buffer) {
	snap := frame.NRGBA()
	w.mu.Lock()
	w.frames++
	w.last = snap
	w.mu.Unlock()
}

func (w *HeadlessWindow) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

func (w *HeadlessWindow) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *HeadlessWindow) SetAlwaysOnTop(onTop bool) error {
	w.mu.Lock()
	w.onTop = onTop
	w.mu.Unlock()
	return nil
}

func (w *HeadlessWindow) SetPosition(x, y int) {
	w.mu.Lock()
	w.x, w.y = x, y
	w.mu.Unlock()
}

func (w *HeadlessWindow) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

func (w *HeadlessWindow) ScreenSize() (int, int) { return w.screen.Dx(), w.screen.Dy() }

func (w *HeadlessWindow) ToFront() {
	w.mu.Lock()
	w.toFronts++
	w.mu.Unlock()
}

func (w *HeadlessWindow) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *HeadlessWindow) SetSmooth(smooth bool) {
	w.mu.Lock()
	w.smooth = smooth
	w.mu.Unlock()
}

func (w *HeadlessWindow) SetBackground(c color.Color) {
	w.mu.Lock()
	w.bg = c
	w.mu.Unlock()
}

func (w *HeadlessWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	w.sink.WindowClosed(event.WindowEvent{SurfaceID: w.cfg.ID})
	return nil
}

// UserClose imitates the user closing the window from its title bar.
func (w *HeadlessWindow) UserClose() {
	w.sink.WindowClosing(event.WindowEvent{SurfaceID: w.cfg.ID})
	if w.cfg.OnClose != nil {
		w.cfg.OnClose()
	}
}

// Sink exposes the event sink so tests can inject input.
func (w *HeadlessWindow) Sink() event.Sink { return w.sink }

// HeadlessState is a copy of a headless window's attributes.
type HeadlessState struct {
	ID       int
	Frames   int
	Last     *image.NRGBA
	Width    int
	Height   int
	Title    string
	X, Y     int
	Visible  bool
	OnTop    bool
	Smooth   bool
	Bg       color.Color
	Closed   bool
	ToFronts int
}

func (w *HeadlessWindow) State() HeadlessState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return HeadlessState{
		ID:       w.cfg.ID,
		Frames:   w.frames,
		Last:     w.last,
		Width:    w.width,
		Height:   w.height,
		Title:    w.title,
		X:        w.x,
		Y:        w.y,
		Visible:  w.visible,
		OnTop:    w.onTop,
		Smooth:   w.smooth,
		Bg:       w.bg,
		Closed:   w.closed,
		ToFronts: w.toFronts,
	}
}
