package display

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
	"github.com/rook-computer/drawingpanel/internal/logging"
)

// Ebiten shows a surface in a desktop window. Ebiten owns a single window
// per process and its game loop must run on the main goroutine, so the
// display hosts one window and Run blocks until that window is closed.
type Ebiten struct {
	Logger logging.Logger

	mu    sync.Mutex
	win   *ebitenWindow
	spent bool
	ready chan struct{}
	ended chan struct{}
	once  sync.Once
}

func NewEbiten(l logging.Logger) *Ebiten {
	return &Ebiten{
		Logger: logging.OrNoop(l),
		ready:  make(chan struct{}),
		ended:  make(chan struct{}),
	}
}

func (d *Ebiten) Open(cfg WindowConfig, sink event.Sink) (Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.win != nil || d.spent {
		return nil, ErrDisplayBusy
	}
	w := &ebitenWindow{
		display: d,
		cfg:     cfg,
		sink:    sink,
		frames:  make(chan *image.RGBA, 1),
		closed:  make(chan struct{}),
		bg:      cfg.Background,
	}
	w.width.Store(int64(cfg.Width))
	w.height.Store(int64(cfg.Height))
	w.smooth.Store(cfg.Smooth)
	if w.bg == nil {
		w.bg = color.White
	}
	d.win = w

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(60)
	d.Logger.Infof("ebiten", "window %d opened, size=%dx%d visible=%t", cfg.ID, cfg.Width, cfg.Height, cfg.Visible)
	sink.WindowOpened(event.WindowEvent{SurfaceID: cfg.ID})
	if cfg.Visible {
		d.markReady()
	}
	return w, nil
}

// NeedsMainThread reports that Run must be called from the main goroutine.
func (d *Ebiten) NeedsMainThread() bool { return true }

func (d *Ebiten) markReady() { d.once.Do(func() { close(d.ready) }) }

// Run waits for the first window to become visible and then runs the game
// loop until the window closes or ctx is done.
func (d *Ebiten) Run(ctx context.Context) error {
	select {
	case <-d.ready:
	case <-ctx.Done():
		return nil
	}
	d.mu.Lock()
	w := d.win
	d.mu.Unlock()
	if w == nil {
		return nil
	}
	defer close(d.ended)
	go func() {
		select {
		case <-ctx.Done():
			w.terminate()
		case <-d.ended:
		}
	}()
	d.Logger.Infof("ebiten", "game loop starting")
	err := ebiten.RunGame(&game{w: w})
	d.Logger.Infof("ebiten", "game loop ended: %v", err)
	return err
}

func (d *Ebiten) release(w *ebitenWindow) {
	d.mu.Lock()
	if d.win == w {
		d.win = nil
		d.spent = true
	}
	d.mu.Unlock()
	// A window closed before it was ever shown still has to unblock Run.
	d.markReady()
}

type ebitenWindow struct {
	display *Ebiten
	cfg     WindowConfig
	sink    event.Sink
	frames  chan *image.RGBA
	closed  chan struct{}
	endOnce sync.Once

	width, height atomic.Int64
	smooth        atomic.Bool

	mu sync.Mutex
	bg color.Color
}

func (w *ebitenWindow) Present(frame *framebuffer.Buffer) {
	img := frame.Premultiplied(nil)
	select {
	case w.frames <- img:
		return
	default:
	}
	// Drop the stale frame so the newest one wins.
	select {
	case <-w.frames:
	default:
	}
	select {
	case w.frames <- img:
	default:
	}
}

func (w *ebitenWindow) Resize(width, height int) {
	w.width.Store(int64(width))
	w.height.Store(int64(height))
	ebiten.SetWindowSize(width, height)
}

func (w *ebitenWindow) SetTitle(title string) { ebiten.SetWindowTitle(title) }

func (w *ebitenWindow) SetAlwaysOnTop(onTop bool) error {
	ebiten.SetWindowFloating(onTop)
	return nil
}

func (w *ebitenWindow) SetPosition(x, y int) { ebiten.SetWindowPosition(x, y) }

func (w *ebitenWindow) Position() (int, int) { return ebiten.WindowPosition() }

func (w *ebitenWindow) ScreenSize() (int, int) {
	if m := ebiten.Monitor(); m != nil {
		if width, height := m.Size(); width > 0 && height > 0 {
			return width, height
		}
	}
	return DefaultScreen.Dx(), DefaultScreen.Dy()
}

func (w *ebitenWindow) ToFront() {
	if ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
}

// SetVisible minimizes the window to hide it; ebiten has no hidden state.
func (w *ebitenWindow) SetVisible(visible bool) {
	if !visible {
		ebiten.MinimizeWindow()
		return
	}
	w.display.markReady()
	if ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
}

func (w *ebitenWindow) SetSmooth(smooth bool) { w.smooth.Store(smooth) }

func (w *ebitenWindow) SetBackground(c color.Color) {
	w.mu.Lock()
	w.bg = c
	w.mu.Unlock()
}

func (w *ebitenWindow) background() color.Color {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bg
}

func (w *ebitenWindow) Close() error {
	first := false
	w.endOnce.Do(func() {
		first = true
		close(w.closed)
	})
	if !first {
		return nil
	}
	w.display.release(w)
	w.sink.WindowClosed(event.WindowEvent{SurfaceID: w.cfg.ID})
	return nil
}

func (w *ebitenWindow) terminate() {
	w.endOnce.Do(func() { close(w.closed) })
	w.display.release(w)
}

var mouseButtons = []struct {
	eb  ebiten.MouseButton
	btn event.Button
}{
	{ebiten.MouseButtonLeft, event.ButtonLeft},
	{ebiten.MouseButtonMiddle, event.ButtonMiddle},
	{ebiten.MouseButtonRight, event.ButtonRight},
}

// game adapts one window to ebiten's Game interface. Input is polled each
// tick and emitted to the window's sink on the game goroutine.
type game struct {
	w     *ebitenWindow
	frame *ebiten.Image

	cx, cy  int
	inside  bool
	pressAt map[event.Button]image.Point
	focused bool
	state   event.State
	closing bool
	keys    []ebiten.Key
	chars   []rune
	started bool
}

func (g *game) Update() error {
	select {
	case <-g.w.closed:
		return ebiten.Termination
	case img := <-g.w.frames:
		if g.frame == nil || g.frame.Bounds() != img.Bounds() {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
		}
		g.frame.WritePixels(img.Pix)
	default:
	}
	if !g.started {
		g.started = true
		g.pressAt = make(map[event.Button]image.Point)
		g.focused = ebiten.IsFocused()
	}

	id := g.w.cfg.ID
	if ebiten.IsWindowBeingClosed() && !g.closing {
		g.closing = true
		g.w.sink.WindowClosing(event.WindowEvent{SurfaceID: id})
		if g.w.cfg.OnClose != nil {
			go g.w.cfg.OnClose()
		} else {
			go g.w.Close()
		}
	}

	g.pollFocusAndState(id)
	g.pollPointer()
	g.pollKeys()
	return nil
}

func (g *game) pollFocusAndState(id int) {
	if f := ebiten.IsFocused(); f != g.focused {
		g.focused = f
		if f {
			g.w.sink.WindowGainedFocus(event.WindowEvent{SurfaceID: id})
		} else {
			g.w.sink.WindowLostFocus(event.WindowEvent{SurfaceID: id})
		}
	}
	st := event.StateNormal
	switch {
	case ebiten.IsWindowMinimized():
		st = event.StateMinimized
	case ebiten.IsWindowMaximized():
		st = event.StateMaximized
	}
	if st != g.state {
		g.w.sink.WindowStateChanged(event.StateEvent{SurfaceID: id, Old: g.state, New: st})
		g.state = st
	}
}

func (g *game) pollPointer() {
	sink := g.w.sink
	x, y := ebiten.CursorPosition()
	width, height := int(g.w.width.Load()), int(g.w.height.Load())
	inside := x >= 0 && y >= 0 && x < width && y < height

	held := event.ButtonNone
	for _, mb := range mouseButtons {
		if ebiten.IsMouseButtonPressed(mb.eb) {
			held = mb.btn
			break
		}
	}
	if inside != g.inside {
		g.inside = inside
		e := event.PointerEvent{X: x, Y: y}
		if inside {
			sink.PointerEntered(e)
		} else {
			sink.PointerExited(e)
		}
	}
	if x != g.cx || y != g.cy {
		g.cx, g.cy = x, y
		if held != event.ButtonNone {
			sink.PointerDragged(event.PointerEvent{X: x, Y: y, Button: held})
		} else if inside {
			sink.PointerMoved(event.PointerEvent{X: x, Y: y})
		}
	}

	for _, mb := range mouseButtons {
		e := event.PointerEvent{X: x, Y: y, Button: mb.btn}
		if inpututil.IsMouseButtonJustPressed(mb.eb) {
			g.pressAt[mb.btn] = image.Pt(x, y)
			sink.PointerPressed(e)
		}
		if inpututil.IsMouseButtonJustReleased(mb.eb) {
			sink.PointerReleased(e)
			if at, ok := g.pressAt[mb.btn]; ok && at == image.Pt(x, y) {
				sink.PointerClicked(e)
			}
			delete(g.pressAt, mb.btn)
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		sink.PointerWheelMoved(event.WheelEvent{X: x, Y: y, DeltaX: dx, DeltaY: dy})
	}
}

func (g *game) pollKeys() {
	sink := g.w.sink
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		sink.KeyPressed(event.KeyEvent{Name: k.String(), Code: int(k)})
	}
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		sink.KeyTyped(event.KeyEvent{Rune: r})
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		sink.KeyReleased(event.KeyEvent{Name: k.String(), Code: int(k)})
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.w.background())
	if g.frame == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	if g.w.smooth.Load() {
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(g.frame, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.w.width.Load()), int(g.w.height.Load())
}
