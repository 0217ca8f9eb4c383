// Package display puts surface frames on a screen. Backends: ebiten
// desktop windows, the Linux console framebuffer, and an in-memory headless
// display. The web preview backend lives in internal/web.
package display

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
)

var (
	// ErrDisplayBusy is returned when a backend cannot host another window.
	ErrDisplayBusy = errors.New("display cannot open another window")
	// ErrUnsupported is returned when the host refuses a window attribute.
	ErrUnsupported = errors.New("not supported by this display")
)

// DefaultScreen is used by backends that cannot query the real screen.
var DefaultScreen = image.Rect(0, 0, 1920, 1080)

type WindowConfig struct {
	ID         int
	Title      string
	Width      int
	Height     int
	Visible    bool
	Background color.Color
	Smooth     bool

	// OnClose is called when the user closes the window from the outside.
	// It must not block on the window's own event goroutine.
	OnClose func()
}

type Window interface {
	// Present copies frame for display. It is called from the surface's
	// repaint goroutine and must not retain frame.
	Present(frame *framebuffer.Buffer)
	Resize(width, height int)
	SetTitle(title string)
	SetAlwaysOnTop(onTop bool) error
	SetPosition(x, y int)
	Position() (x, y int)
	ScreenSize() (width, height int)
	ToFront()
	SetVisible(visible bool)
	SetSmooth(smooth bool)
	SetBackground(c color.Color)
	Close() error
}

type Display interface {
	Open(cfg WindowConfig, sink event.Sink) (Window, error)
	// Run drives the backend on the calling goroutine until ctx is done.
	Run(ctx context.Context) error
}
