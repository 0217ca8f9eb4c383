package event

import (
	"reflect"
	"testing"
)

type keyRecorder struct{ got []string }

func (r *keyRecorder) KeyPressed(e KeyEvent)  { r.got = append(r.got, "press:"+e.Name) }
func (r *keyRecorder) KeyReleased(e KeyEvent) { r.got = append(r.got, "release:"+e.Name) }
func (r *keyRecorder) KeyTyped(e KeyEvent)    { r.got = append(r.got, "typed:"+string(e.Rune)) }

// mouseAndWindow implements three channels at once.
type mouseAndWindow struct {
	moves, clicks, opened, closed int
}

func (m *mouseAndWindow) PointerMoved(PointerEvent)    { m.moves++ }
func (m *mouseAndWindow) PointerDragged(PointerEvent)  { m.moves++ }
func (m *mouseAndWindow) PointerPressed(PointerEvent)  {}
func (m *mouseAndWindow) PointerReleased(PointerEvent) {}
func (m *mouseAndWindow) PointerClicked(PointerEvent)  { m.clicks++ }
func (m *mouseAndWindow) PointerEntered(PointerEvent)  {}
func (m *mouseAndWindow) PointerExited(PointerEvent)   {}
func (m *mouseAndWindow) WindowOpened(WindowEvent)     { m.opened++ }
func (m *mouseAndWindow) WindowClosing(WindowEvent)    {}
func (m *mouseAndWindow) WindowClosed(WindowEvent)     { m.closed++ }

func TestCapabilitiesOf(t *testing.T) {
	tests := []struct {
		name string
		l    any
		want Capability
	}{
		{"key only", &keyRecorder{}, Key},
		{"multi", &mouseAndWindow{}, PointerMotion | PointerButton | WindowLifecycle},
		{"nothing", struct{}{}, 0},
		{"dispatcher implements all", NewDispatcher(), PointerMotion | PointerButton | PointerWheel | Key | WindowLifecycle | WindowFocus | WindowState},
	}
	for _, tt := range tests {
		if got := CapabilitiesOf(tt.l); got != tt.want {
			t.Errorf("%s: CapabilitiesOf = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCapabilityString(t *testing.T) {
	if got := (Key | WindowFocus).String(); got != "key|window-focus" {
		t.Errorf("String = %q", got)
	}
	if got := Capability(0).String(); got != "none" {
		t.Errorf("String = %q", got)
	}
}

func TestDispatchFansOutPerChannel(t *testing.T) {
	d := NewDispatcher()
	keys := &keyRecorder{}
	multi := &mouseAndWindow{}

	if c := d.Add(keys); c != Key {
		t.Errorf("Add(keys) = %v", c)
	}
	if c := d.Add(multi); !c.Has(PointerMotion) || !c.Has(WindowLifecycle) {
		t.Errorf("Add(multi) = %v", c)
	}
	if c := d.Add(42); c != 0 {
		t.Errorf("Add(42) = %v, want none", c)
	}

	d.KeyPressed(KeyEvent{Name: "A"})
	d.KeyTyped(KeyEvent{Rune: 'a'})
	d.KeyReleased(KeyEvent{Name: "A"})
	d.PointerMoved(PointerEvent{X: 1, Y: 2})
	d.PointerDragged(PointerEvent{X: 2, Y: 2, Button: ButtonLeft})
	d.PointerClicked(PointerEvent{Button: ButtonLeft})
	d.WindowOpened(WindowEvent{SurfaceID: 1})
	d.WindowClosed(WindowEvent{SurfaceID: 1})
	d.PointerWheelMoved(WheelEvent{DeltaY: 1})
	d.WindowStateChanged(StateEvent{New: StateMinimized})

	if want := []string{"press:A", "typed:a", "release:A"}; !reflect.DeepEqual(keys.got, want) {
		t.Errorf("keys = %v, want %v", keys.got, want)
	}
	if multi.moves != 2 || multi.clicks != 1 || multi.opened != 1 || multi.closed != 1 {
		t.Errorf("multi = %+v", *multi)
	}
}

type selfRegistering struct {
	d     *Dispatcher
	calls int
}

func (s *selfRegistering) WindowGainedFocus(WindowEvent) {
	s.calls++
	s.d.Add(&keyRecorder{})
}
func (s *selfRegistering) WindowLostFocus(WindowEvent) {}

func TestListenerMayRegisterDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	s := &selfRegistering{d: d}
	d.Add(s)
	d.WindowGainedFocus(WindowEvent{})
	if s.calls != 1 {
		t.Errorf("calls = %d, want 1", s.calls)
	}
}
