package web

import (
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"

	"github.com/rook-computer/drawingpanel/event"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// inputEvent is the body of POST /api/v1/surfaces/{id}/events.
type inputEvent struct {
	Kind   string  `json:"kind"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Button int     `json:"button"`
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
	Key    string  `json:"key"`
	Code   int     `json:"code"`
	Rune   string  `json:"rune"`
}

func apiV1Router(d *Display) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /surfaces", func(w http.ResponseWriter, r *http.Request) { handleSurfaces(w, d) })
	mux.HandleFunc("GET /surfaces/{id}/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, d) })
	mux.HandleFunc("POST /surfaces/{id}/events", func(w http.ResponseWriter, r *http.Request) { handleEvent(w, r, d) })
	return mux
}

func handleSurfaces(w http.ResponseWriter, d *Display) {
	windows := d.list()
	out := make([]surfaceInfo, 0, len(windows))
	for _, win := range windows {
		out = append(out, win.info())
	}
	writeJSON(w, http.StatusOK, out)
}

func lookup(w http.ResponseWriter, r *http.Request, d *Display) (*Window, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_id", "surface id must be an integer")
		return nil, false
	}
	win, ok := d.window(id)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "surface_not_found", "surface not found")
		return nil, false
	}
	return win, true
}

func handleFrame(w http.ResponseWriter, r *http.Request, d *Display) {
	win, ok := lookup(w, r, d)
	if !ok {
		return
	}
	img, n := win.latest()
	if img == nil {
		writeAPIError(w, http.StatusNotFound, "no_frame", "surface has not painted yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(FrameCountHeader, strconv.Itoa(n))
	if err := png.Encode(w, img); err != nil {
		win.display.Logger.Errorf("web", "encode frame %d: %v", win.cfg.ID, err)
	}
}

func handleEvent(w http.ResponseWriter, r *http.Request, d *Display) {
	win, ok := lookup(w, r, d)
	if !ok {
		return
	}
	var in inputEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&in); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if !win.inject(in) {
		writeAPIError(w, http.StatusBadRequest, "unknown_kind", "unknown event kind "+strconv.Quote(in.Kind))
		return
	}
	writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

// inject emits in to the window's sink. It reports false for unknown kinds.
func (w *Window) inject(in inputEvent) bool {
	s := w.sink
	p := event.PointerEvent{X: in.X, Y: in.Y, Button: event.Button(in.Button)}
	var r rune
	for _, c := range in.Rune {
		r = c
		break
	}
	k := event.KeyEvent{Name: in.Key, Code: in.Code, Rune: r}
	win := event.WindowEvent{SurfaceID: w.cfg.ID}
	switch in.Kind {
	case "pointer-moved":
		s.PointerMoved(p)
	case "pointer-dragged":
		s.PointerDragged(p)
	case "pointer-pressed":
		s.PointerPressed(p)
	case "pointer-released":
		s.PointerReleased(p)
	case "pointer-clicked":
		s.PointerClicked(p)
	case "pointer-entered":
		s.PointerEntered(p)
	case "pointer-exited":
		s.PointerExited(p)
	case "wheel":
		s.PointerWheelMoved(event.WheelEvent{X: in.X, Y: in.Y, DeltaX: in.DeltaX, DeltaY: in.DeltaY})
	case "key-pressed":
		s.KeyPressed(k)
	case "key-released":
		s.KeyReleased(k)
	case "key-typed":
		s.KeyTyped(k)
	case "focus-gained":
		s.WindowGainedFocus(win)
	case "focus-lost":
		s.WindowLostFocus(win)
	case "close":
		s.WindowClosing(win)
		if w.cfg.OnClose != nil {
			go w.cfg.OnClose()
		}
	default:
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
