package event

import "sync"

// Sink receives every kind of event. Display backends emit into a Sink; the
// Dispatcher is the Sink a surface hands them.
type Sink interface {
	PointerMotionListener
	PointerButtonListener
	PointerWheelListener
	KeyListener
	WindowListener
	WindowFocusListener
	WindowStateListener
}

// Dispatcher fans events out to registered listeners in registration order.
// Listeners run on the goroutine that emits the event.
type Dispatcher struct {
	mu     sync.RWMutex
	motion []PointerMotionListener
	button []PointerButtonListener
	wheel  []PointerWheelListener
	key    []KeyListener
	window []WindowListener
	focus  []WindowFocusListener
	state  []WindowStateListener
}

var _ Sink = (*Dispatcher)(nil)

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Add attaches l to every channel it implements and returns those channels.
func (d *Dispatcher) Add(l any) Capability {
	c := CapabilitiesOf(l)
	if c == 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.Has(PointerMotion) {
		d.motion = append(d.motion, l.(PointerMotionListener))
	}
	if c.Has(PointerButton) {
		d.button = append(d.button, l.(PointerButtonListener))
	}
	if c.Has(PointerWheel) {
		d.wheel = append(d.wheel, l.(PointerWheelListener))
	}
	if c.Has(Key) {
		d.key = append(d.key, l.(KeyListener))
	}
	if c.Has(WindowLifecycle) {
		d.window = append(d.window, l.(WindowListener))
	}
	if c.Has(WindowFocus) {
		d.focus = append(d.focus, l.(WindowFocusListener))
	}
	if c.Has(WindowState) {
		d.state = append(d.state, l.(WindowStateListener))
	}
	return c
}

// snapshot copies a listener slice so callbacks may register listeners
// without deadlocking.
func snapshot[T any](d *Dispatcher, s *[]T) []T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]T(nil), (*s)...)
}

func (d *Dispatcher) PointerMoved(e PointerEvent) {
	for _, l := range snapshot(d, &d.motion) {
		l.PointerMoved(e)
	}
}

func (d *Dispatcher) PointerDragged(e PointerEvent) {
	for _, l := range snapshot(d, &d.motion) {
		l.PointerDragged(e)
	}
}

func (d *Dispatcher) PointerPressed(e PointerEvent) {
	for _, l := range snapshot(d, &d.button) {
		l.PointerPressed(e)
	}
}

func (d *Dispatcher) PointerReleased(e PointerEvent) {
	for _, l := range snapshot(d, &d.button) {
		l.PointerReleased(e)
	}
}

func (d *Dispatcher) PointerClicked(e PointerEvent) {
	for _, l := range snapshot(d, &d.button) {
		l.PointerClicked(e)
	}
}

func (d *Dispatcher) PointerEntered(e PointerEvent) {
	for _, l := range snapshot(d, &d.button) {
		l.PointerEntered(e)
	}
}

func (d *Dispatcher) PointerExited(e PointerEvent) {
	for _, l := range snapshot(d, &d.button) {
		l.PointerExited(e)
	}
}

func (d *Dispatcher) PointerWheelMoved(e WheelEvent) {
	for _, l := range snapshot(d, &d.wheel) {
		l.PointerWheelMoved(e)
	}
}

func (d *Dispatcher) KeyPressed(e KeyEvent) {
	for _, l := range snapshot(d, &d.key) {
		l.KeyPressed(e)
	}
}

func (d *Dispatcher) KeyReleased(e KeyEvent) {
	for _, l := range snapshot(d, &d.key) {
		l.KeyReleased(e)
	}
}

func (d *Dispatcher) KeyTyped(e KeyEvent) {
	for _, l := range snapshot(d, &d.key) {
		l.KeyTyped(e)
	}
}

func (d *Dispatcher) WindowOpened(e WindowEvent) {
	for _, l := range snapshot(d, &d.window) {
		l.WindowOpened(e)
	}
}

func (d *Dispatcher) WindowClosing(e WindowEvent) {
	for _, l := range snapshot(d, &d.window) {
		l.WindowClosing(e)
	}
}

func (d *Dispatcher) WindowClosed(e WindowEvent) {
	for _, l := range snapshot(d, &d.window) {
		l.WindowClosed(e)
	}
}

func (d *Dispatcher) WindowGainedFocus(e WindowEvent) {
	for _, l := range snapshot(d, &d.focus) {
		l.WindowGainedFocus(e)
	}
}

func (d *Dispatcher) WindowLostFocus(e WindowEvent) {
	for _, l := range snapshot(d, &d.focus) {
		l.WindowLostFocus(e)
	}
}

func (d *Dispatcher) WindowStateChanged(e StateEvent) {
	for _, l := range snapshot(d, &d.state) {
		l.WindowStateChanged(e)
	}
}
