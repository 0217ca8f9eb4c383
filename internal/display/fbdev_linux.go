//go:build linux

package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/internal/system"
)

// DefaultFBDevice is the console framebuffer opened when none is configured.
const DefaultFBDevice = "/dev/fb0"

// FBDev shows surfaces full screen on the Linux console framebuffer. Only
// the front-most visible window is drawn; the others keep their frames and
// are redrawn when brought to the front.
type FBDev struct {
	Path   string
	Logger logging.Logger

	mu      sync.Mutex
	dev     *fb.Device
	windows []*fbWindow // back to front
	keyMu   sync.Mutex
}

func NewFBDev(path string, l logging.Logger) *FBDev {
	if path == "" {
		path = DefaultFBDevice
	}
	return &FBDev{Path: path, Logger: logging.OrNoop(l)}
}

func (d *FBDev) open() (*fb.Device, error) {
	if d.dev != nil {
		return d.dev, nil
	}
	dev, err := fb.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", d.Path, err)
	}
	d.dev = dev
	b := dev.Bounds()
	d.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", b.Dx(), b.Dy())
	return dev, nil
}

func (d *FBDev) Open(cfg WindowConfig, sink event.Sink) (Window, error) {
	d.mu.Lock()
	dev, err := d.open()
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	w := &fbWindow{display: d, cfg: cfg, sink: sink, screen: dev.Bounds(), visible: cfg.Visible, bg: cfg.Background}
	if w.bg == nil {
		w.bg = color.White
	}
	d.windows = append(d.windows, w)
	d.mu.Unlock()
	sink.WindowOpened(event.WindowEvent{SurfaceID: cfg.ID})
	return w, nil
}

// Run switches the console to graphics mode and routes keyboard input to the
// front window until ctx is done.
func (d *FBDev) Run(ctx context.Context) error {
	console := system.Console{Logger: d.Logger}
	_ = console.EnterGraphics()
	system.WatchKeys(ctx, d.Logger, d.dispatchKey)
	<-ctx.Done()
	_ = console.Restore()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		d.dev.Close()
		d.dev = nil
	}
	return nil
}

func (d *FBDev) dispatchKey(rec system.KeyRecord) {
	w := d.front()
	if w == nil {
		return
	}
	name, r := system.KeyName(rec.Code)
	e := event.KeyEvent{Name: name, Code: int(rec.Code), Rune: r}
	// Records arrive from one goroutine per input device.
	d.keyMu.Lock()
	defer d.keyMu.Unlock()
	switch rec.Value {
	case system.KeyDown, system.KeyRepeat:
		w.sink.KeyPressed(e)
		if r != 0 {
			w.sink.KeyTyped(e)
		}
	case system.KeyUp:
		w.sink.KeyReleased(e)
	}
}

// front returns the top visible window.
func (d *FBDev) front() *fbWindow {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.windows) - 1; i >= 0; i-- {
		if d.windows[i].isVisible() {
			return d.windows[i]
		}
	}
	return nil
}

func (d *FBDev) raise(w *fbWindow) {
	d.mu.Lock()
	for i, o := range d.windows {
		if o == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	d.windows = append(d.windows, w)
	d.mu.Unlock()
	w.redraw()
}

func (d *FBDev) remove(w *fbWindow) {
	d.mu.Lock()
	for i, o := range d.windows {
		if o == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
	if next := d.front(); next != nil {
		next.redraw()
	}
}

func (d *FBDev) blit(frame *framebuffer.Buffer, bg color.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return
	}
	Letterbox(d.dev, frame, bg)
}

type fbWindow struct {
	display *FBDev
	cfg     WindowConfig
	sink    event.Sink
	screen  image.Rectangle

	mu      sync.Mutex
	last    *framebuffer.Buffer
	x, y    int
	visible bool
	bg      color.Color
	closed  bool
}

func (w *fbWindow) isVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible && !w.closed
}

func (w *fbWindow) Present(frame *framebuffer.Buffer) {
	w.mu.Lock()
	if w.last == nil || w.last.Width != frame.Width || w.last.Height != frame.Height {
		w.last = framebuffer.New(frame.Width, frame.Height)
	}
	copy(w.last.Pix, frame.Pix)
	w.mu.Unlock()
	if w.display.front() == w {
		w.redraw()
	}
}

func (w *fbWindow) redraw() {
	w.mu.Lock()
	frame, bg := w.last, w.bg
	w.mu.Unlock()
	if frame != nil {
		w.display.blit(frame, bg)
	}
}

func (w *fbWindow) Resize(width, height int) {}

func (w *fbWindow) SetTitle(title string) {}

func (w *fbWindow) SetAlwaysOnTop(onTop bool) error {
	if !onTop {
		return nil
	}
	return fmt.Errorf("always-on-top on the console framebuffer: %w", ErrUnsupported)
}

func (w *fbWindow) SetPosition(x, y int) {
	w.mu.Lock()
	w.x, w.y = x, y
	w.mu.Unlock()
}

func (w *fbWindow) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

func (w *fbWindow) ScreenSize() (int, int) { return w.screen.Dx(), w.screen.Dy() }

func (w *fbWindow) ToFront() { w.display.raise(w) }

func (w *fbWindow) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
	if visible {
		w.display.raise(w)
	} else if next := w.display.front(); next != nil {
		next.redraw()
	}
}

// SetSmooth is a no-op; the console blit is always nearest-neighbor.
func (w *fbWindow) SetSmooth(smooth bool) {}

func (w *fbWindow) SetBackground(c color.Color) {
	w.mu.Lock()
	w.bg = c
	w.mu.Unlock()
}

func (w *fbWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	w.display.remove(w)
	w.sink.WindowClosed(event.WindowEvent{SurfaceID: w.cfg.ID})
	return nil
}
