package web

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"sort"
	"sync"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/display"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
	"github.com/rook-computer/drawingpanel/internal/logging"
)

// Display keeps the latest frame of every open window and serves them over
// HTTP for a browser preview. Input posted to the API is fed back to the
// window's sink.
type Display struct {
	Config ServerConfig
	Logger logging.Logger

	mu      sync.RWMutex
	windows map[int]*Window
	server  *HTTPServer
}

var _ display.Display = (*Display)(nil)

func NewDisplay(cfg ServerConfig, l logging.Logger) *Display {
	return &Display{Config: cfg, Logger: logging.OrNoop(l), windows: make(map[int]*Window)}
}

func (d *Display) Open(cfg display.WindowConfig, sink event.Sink) (display.Window, error) {
	w := &Window{
		display: d,
		cfg:     cfg,
		sink:    sink,
		title:   cfg.Title,
		width:   cfg.Width,
		height:  cfg.Height,
		visible: cfg.Visible,
		smooth:  cfg.Smooth,
		bg:      cfg.Background,
	}
	d.mu.Lock()
	d.windows[cfg.ID] = w
	d.mu.Unlock()
	d.Logger.Infof("web", "window %d opened, size=%dx%d", cfg.ID, cfg.Width, cfg.Height)
	sink.WindowOpened(event.WindowEvent{SurfaceID: cfg.ID})
	return w, nil
}

// Handler returns the preview mux, wrapped for CORS in dev mode.
func (d *Display) Handler() http.Handler {
	mux := NewDefaultMux(d)
	if d.Config.DevMode {
		return WithDevCORS(mux)
	}
	return mux
}

// Run serves the preview until ctx is done.
func (d *Display) Run(ctx context.Context) error {
	srv := NewHTTPServer(d.Config.ListenAddr, d.Handler(), d.Logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	d.server = srv
	d.mu.Unlock()
	<-ctx.Done()
	return srv.Stop()
}

func (d *Display) window(id int) (*Window, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	w, ok := d.windows[id]
	return w, ok
}

func (d *Display) remove(id int) {
	d.mu.Lock()
	delete(d.windows, id)
	d.mu.Unlock()
}

// list returns open windows ordered by id.
func (d *Display) list() []*Window {
	d.mu.RLock()
	out := make([]*Window, 0, len(d.windows))
	for _, w := range d.windows {
		out = append(out, w)
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].cfg.ID < out[j].cfg.ID })
	return out
}

type Window struct {
	display *Display
	cfg     display.WindowConfig
	sink    event.Sink

	mu      sync.RWMutex
	frame   *image.NRGBA
	frames  int
	title   string
	width   int
	height  int
	x, y    int
	visible bool
	onTop   bool
	smooth  bool
	bg      color.Color
}

func (w *Window) Present(frame *framebuffer.Buffer) {
	img := frame.NRGBA()
	w.mu.Lock()
	w.frame = img
	w.frames++
	w.mu.Unlock()
}

func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *Window) SetAlwaysOnTop(onTop bool) error {
	w.mu.Lock()
	w.onTop = onTop
	w.mu.Unlock()
	return nil
}

func (w *Window) SetPosition(x, y int) {
	w.mu.Lock()
	w.x, w.y = x, y
	w.mu.Unlock()
}

func (w *Window) Position() (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.x, w.y
}

func (w *Window) ScreenSize() (int, int) {
	return display.DefaultScreen.Dx(), display.DefaultScreen.Dy()
}

func (w *Window) ToFront() {}

func (w *Window) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *Window) SetSmooth(smooth bool) {
	w.mu.Lock()
	w.smooth = smooth
	w.mu.Unlock()
}

func (w *Window) SetBackground(c color.Color) {
	w.mu.Lock()
	w.bg = c
	w.mu.Unlock()
}

func (w *Window) Close() error {
	if _, ok := w.display.window(w.cfg.ID); !ok {
		return nil
	}
	w.display.remove(w.cfg.ID)
	w.sink.WindowClosed(event.WindowEvent{SurfaceID: w.cfg.ID})
	return nil
}

type surfaceInfo struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Visible bool   `json:"visible"`
	OnTop   bool   `json:"alwaysOnTop"`
	Smooth  bool   `json:"antiAlias"`
	Frames  int    `json:"frames"`
}

func (w *Window) info() surfaceInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return surfaceInfo{
		ID:      w.cfg.ID,
		Title:   w.title,
		Width:   w.width,
		Height:  w.height,
		X:       w.x,
		Y:       w.y,
		Visible: w.visible,
		OnTop:   w.onTop,
		Smooth:  w.smooth,
		Frames:  w.frames,
	}
}

// latest returns the newest frame and how many frames preceded it.
func (w *Window) latest() (*image.NRGBA, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame, w.frames
}

// ListenAddr reports where the preview is served once Run has started.
func (d *Display) ListenAddr() string {
	d.mu.RLock()
	srv := d.server
	d.mu.RUnlock()
	if srv == nil {
		return ""
	}
	return srv.ListenAddr()
}
