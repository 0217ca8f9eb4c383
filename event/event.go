// Package event defines the input and window events a surface delivers and
// the listener interfaces clients implement to receive them.
//
// A single listener value may implement several interfaces; it is attached
// to every channel it supports.
package event

import "strings"

// Capability is a set of dispatch channels.
type Capability uint8

const (
	PointerMotion Capability = 1 << iota
	PointerButton
	PointerWheel
	Key
	WindowLifecycle
	WindowFocus
	WindowState
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{PointerMotion, "pointer-motion"},
	{PointerButton, "pointer-button"},
	{PointerWheel, "pointer-wheel"},
	{Key, "key"},
	{WindowLifecycle, "window-lifecycle"},
	{WindowFocus, "window-focus"},
	{WindowState, "window-state"},
}

func (c Capability) Has(other Capability) bool { return c&other == other && other != 0 }

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range capabilityNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// PointerEvent positions are in surface pixels.
type PointerEvent struct {
	X, Y   int
	Button Button
}

type WheelEvent struct {
	X, Y           int
	DeltaX, DeltaY float64
}

// KeyEvent carries the key name for press/release and the typed rune for
// KeyTyped.
type KeyEvent struct {
	Name string
	Code int
	Rune rune
}

type WindowEvent struct {
	SurfaceID int
}

type State uint8

const (
	StateNormal State = iota
	StateMinimized
	StateMaximized
)

func (s State) String() string {
	switch s {
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "normal"
	}
}

type StateEvent struct {
	SurfaceID int
	Old, New  State
}

type PointerMotionListener interface {
	PointerMoved(e PointerEvent)
	PointerDragged(e PointerEvent)
}

type PointerButtonListener interface {
	PointerPressed(e PointerEvent)
	PointerReleased(e PointerEvent)
	PointerClicked(e PointerEvent)
	PointerEntered(e PointerEvent)
	PointerExited(e PointerEvent)
}

type PointerWheelListener interface {
	PointerWheelMoved(e WheelEvent)
}

type KeyListener interface {
	KeyPressed(e KeyEvent)
	KeyReleased(e KeyEvent)
	KeyTyped(e KeyEvent)
}

type WindowListener interface {
	WindowOpened(e WindowEvent)
	WindowClosing(e WindowEvent)
	WindowClosed(e WindowEvent)
}

type WindowFocusListener interface {
	WindowGainedFocus(e WindowEvent)
	WindowLostFocus(e WindowEvent)
}

type WindowStateListener interface {
	WindowStateChanged(e StateEvent)
}

// CapabilitiesOf reports which channels l can be attached to.
func CapabilitiesOf(l any) Capability {
	var c Capability
	if _, ok := l.(PointerMotionListener); ok {
		c |= PointerMotion
	}
	if _, ok := l.(PointerButtonListener); ok {
		c |= PointerButton
	}
	if _, ok := l.(PointerWheelListener); ok {
		c |= PointerWheel
	}
	if _, ok := l.(KeyListener); ok {
		c |= Key
	}
	if _, ok := l.(WindowListener); ok {
		c |= WindowLifecycle
	}
	if _, ok := l.(WindowFocusListener); ok {
		c |= WindowFocus
	}
	if _, ok := l.(WindowStateListener); ok {
		c |= WindowState
	}
	return c
}
