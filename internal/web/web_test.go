package web

import (
	"encoding/json"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/display"
	"github.com/rook-computer/drawingpanel/internal/framebuffer"
)

type clickRecorder struct {
	clicks []event.PointerEvent
	typed  []rune
}

func (c *clickRecorder) PointerPressed(event.PointerEvent)  {}
func (c *clickRecorder) PointerReleased(event.PointerEvent) {}
func (c *clickRecorder) PointerClicked(e event.PointerEvent) { c.clicks = append(c.clicks, e) }
func (c *clickRecorder) PointerEntered(event.PointerEvent)  {}
func (c *clickRecorder) PointerExited(event.PointerEvent)   {}
func (c *clickRecorder) KeyPressed(event.KeyEvent)          {}
func (c *clickRecorder) KeyReleased(event.KeyEvent)         {}
func (c *clickRecorder) KeyTyped(e event.KeyEvent)          { c.typed = append(c.typed, e.Rune) }

func newTestDisplay(t *testing.T, dev bool) (*Display, display.Window, *clickRecorder) {
	t.Helper()
	d := NewDisplay(ServerConfig{DevMode: dev}, nil)
	disp := event.NewDispatcher()
	rec := &clickRecorder{}
	disp.Add(rec)
	win, err := d.Open(display.WindowConfig{ID: 3, Title: "demo", Width: 2, Height: 2, Visible: true}, disp)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d, win, rec
}

func TestSurfacesList(t *testing.T) {
	d, win, _ := newTestDisplay(t, false)
	win.SetTitle("renamed")

	rr := httptest.NewRecorder()
	d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surfaces", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var got []surfaceInfo
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 || got[0].Title != "renamed" || got[0].Width != 2 {
		t.Errorf("surfaces = %+v", got)
	}
}

func TestFramePNG(t *testing.T) {
	d, win, _ := newTestDisplay(t, false)
	h := d.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surfaces/3/frame.png", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("before first frame: status = %d, want 404", rr.Code)
	}

	buf := framebuffer.New(2, 2)
	buf.SetARGB(1, 0, 0xFF00FF00)
	win.Present(buf)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surfaces/3/frame.png", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status = %d type %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if got := rr.Header().Get(FrameCountHeader); got != "1" {
		t.Errorf("%s = %q, want 1", FrameCountHeader, got)
	}
	img, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if c := color.NRGBAModel.Convert(img.At(1, 0)); c != (color.NRGBA{G: 0xFF, A: 0xFF}) {
		t.Errorf("pixel (1,0) = %v", c)
	}

	for _, path := range []string{"/api/v1/surfaces/9/frame.png", "/api/v1/surfaces/x/frame.png"} {
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusNotFound && rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", path, rr.Code)
		}
	}
}

func TestEventInjection(t *testing.T) {
	d, _, rec := newTestDisplay(t, false)
	h := d.Handler()

	tests := []struct {
		body string
		want int
	}{
		{`{"kind":"pointer-clicked","x":1,"y":1,"button":1}`, http.StatusAccepted},
		{`{"kind":"key-typed","rune":"q"}`, http.StatusAccepted},
		{`{"kind":"teleport"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/surfaces/3/events", strings.NewReader(tt.body))
		h.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, rr.Code, tt.want)
		}
	}
	if len(rec.clicks) != 1 || rec.clicks[0] != (event.PointerEvent{X: 1, Y: 1, Button: event.ButtonLeft}) {
		t.Errorf("clicks = %+v", rec.clicks)
	}
	if len(rec.typed) != 1 || rec.typed[0] != 'q' {
		t.Errorf("typed = %q", rec.typed)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surfaces/3/events", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET events: status = %d, want 405", rr.Code)
	}
}

func TestClosedSurfaceDisappears(t *testing.T) {
	d, win, _ := newTestDisplay(t, false)
	win.Close()
	win.Close()
	rr := httptest.NewRecorder()
	d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surfaces", nil))
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("surfaces after close = %s", rr.Body)
	}
}

func TestDevCORS(t *testing.T) {
	d, _, _ := newTestDisplay(t, true)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/surfaces", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	d.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("preflight: status=%d headers=%v", rr.Code, rr.Header())
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != FrameCountHeader {
		t.Errorf("exposed headers = %q", got)
	}
}

func TestViewerPageServed(t *testing.T) {
	d, _, _ := newTestDisplay(t, false)
	rr := httptest.NewRecorder()
	d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "api/v1/surfaces") {
		t.Errorf("index: status=%d", rr.Code)
	}
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvDevMode, "")
	cfg, err := DefaultServerConfigFromEnv(":9000")
	if err != nil || cfg.ListenAddr != ":9000" || cfg.DevMode {
		t.Errorf("defaults = %+v, %v", cfg, err)
	}

	t.Setenv(EnvListenAddr, "0.0.0.0:1234")
	t.Setenv(EnvDevMode, "true")
	cfg, err = DefaultServerConfigFromEnv(":9000")
	if err != nil || cfg.ListenAddr != "0.0.0.0:1234" || !cfg.DevMode {
		t.Errorf("env = %+v, %v", cfg, err)
	}

	t.Setenv(EnvDevMode, "maybe")
	if _, err := DefaultServerConfigFromEnv(":9000"); err == nil {
		t.Error("expected error for non-boolean dev mode")
	}
}
