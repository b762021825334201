// Package server implements the HTTP server and routing logic.
package server

import (
	"embed"
	"io"
	"io/fs"
	"net/http"

	"github.com/jetview/jetview/frontend"
	"github.com/jetview/jetview/internal/server/handlers"
)

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/* and the embedded viewer frontend at /.
func NewRouter(svc *handlers.Services, cfg *handlers.Config) http.Handler {
	mux := &http.ServeMux{}

	hh := &handlers.HealthHandler{Version: cfg.Version}
	sch := &handlers.SchemaHandler{}
	fh := &handlers.FilesHandler{Svc: svc, Cfg: cfg}
	sh := &handlers.SessionHandler{Svc: svc, Cfg: cfg}

	// Health and API description
	mux.Handle("GET /api/v1/health", Wrap(hh.Health))
	mux.Handle("GET /api/v1/schema", Wrap(sch.Schema))

	// File loading
	mux.HandleFunc("POST /api/v1/files", fh.Upload)

	// Session state. GET is tokenless so a reloaded page can discover the
	// restored session; everything that reads or moves the view requires
	// the session token.
	mux.Handle("GET /api/v1/session", Wrap(sh.GetSession))
	mux.Handle("POST /api/v1/session/tables/{table}/select", WrapSession(sh.SelectTable, svc, cfg))
	mux.Handle("GET /api/v1/session/tables/{table}/rows", WrapSession(sh.Rows, svc, cfg))
	mux.Handle("POST /api/v1/session/match", WrapSession(sh.Match, svc, cfg))
	mux.Handle("POST /api/v1/session/hover", WrapSession(sh.Hover, svc, cfg))
	mux.Handle("POST /api/v1/session/hover/clear", WrapSession(sh.ClearHover, svc, cfg))

	// Serve the embedded frontend with SPA fallback
	mux.Handle("/", NewEmbeddedSPAHandler(frontend.Files))

	return Recover(AccessLog(mux))
}

// EmbeddedSPAHandler serves an embedded single-page application with fallback to index.html.
type EmbeddedSPAHandler struct {
	fs embed.FS
}

// NewEmbeddedSPAHandler creates a handler for the embedded frontend.
func NewEmbeddedSPAHandler(f embed.FS) *EmbeddedSPAHandler {
	return &EmbeddedSPAHandler{fs: f}
}

// ServeHTTP implements http.Handler for embedded SPA routing.
func (h *EmbeddedSPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Try to serve the exact file from dist/
	path := "dist" + r.URL.Path
	f, err := h.fs.Open(path)
	if err == nil {
		_ = f.Close()
		fsys, _ := fs.Sub(h.fs, "dist")
		fileServer := http.FileServer(http.FS(fsys))
		if containsDot(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fileServer.ServeHTTP(w, r)
		return
	}

	// File not found - fall back to index.html for SPA routing
	indexFile, err := h.fs.Open("dist/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = indexFile.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = io.Copy(w, indexFile)
}

// containsDot checks if a path contains a dot (file extension).
func containsDot(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}
