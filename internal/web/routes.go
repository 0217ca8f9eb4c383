package web

import (
	"net/http"
	"path"

	"github.com/rook-computer/drawingpanel/internal/assets"
)

// RegisterAPIV1 registers the preview API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, d *Display) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(d)))
}

// RegisterUI serves the embedded viewer page.
func RegisterUI(mux *http.ServeMux) {
	fileServer := http.FileServer(http.FS(assets.WebUI))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid oddities.
		r.URL.Path = path.Clean("/" + r.URL.Path)
		fileServer.ServeHTTP(w, r)
	}))
}

// NewDefaultMux builds the preview mux:
// - /api/v1/* for the API
// - / for the viewer page
func NewDefaultMux(d *Display) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, d)
	RegisterUI(mux)
	return mux
}
