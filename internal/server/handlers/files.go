// Handles file upload: the entry point of the viewing flow.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/jet"
	"github.com/jetview/jetview/internal/server/dto"
	"github.com/jetview/jetview/internal/server/reqctx"
)

// acceptedExtensions are the file suffixes accepted at the upload
// boundary, compared case-insensitively.
var acceptedExtensions = []string{".mdb", ".accdb"}

// validExtension reports whether the file name carries an accepted suffix.
func validExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, accepted := range acceptedExtensions {
		if ext == accepted {
			return true
		}
	}
	return false
}

// FilesHandler accepts database file uploads.
type FilesHandler struct {
	Svc *Services
	Cfg *Config
}

// Upload is a raw handler: it reads the file from a multipart form field
// named "file" (or the raw body with a ?name= parameter), decodes it,
// persists it for restore, builds the catalog, and opens the session.
//
// Persistence failure is non-fatal: the response reports saved=false and
// the database still opens. Decode failure is the only user-visible hard
// error of the flow.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Cfg.UploadLimiter != nil {
		result := h.Cfg.UploadLimiter.Allow(reqctx.GetClientIP(r))
		if !result.Allowed {
			writeErrorResponse(w, dto.RateLimitExceeded(int(result.RetryAfter.Seconds())))
			return
		}
	}

	if h.Cfg.Limits.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.Limits.MaxUploadBytes)
	}

	name, data, err := readUpload(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeErrorResponse(w, dto.PayloadTooLarge(maxBytesErr.Limit))
			return
		}
		writeErrorResponse(w, dto.BadRequest("Failed to read upload").Wrap(err))
		return
	}
	if !validExtension(name) {
		writeErrorResponse(w, dto.InvalidExtension(name))
		return
	}

	reader, err := jet.Open(name, data)
	if err != nil {
		slog.WarnContext(ctx, "Failed to decode uploaded file", "file", name, "err", err)
		writeErrorResponse(w, dto.DecodeFailed(err))
		return
	}

	saved := true
	backend, err := h.Svc.Store.Save(ctx, data, name)
	if err != nil {
		slog.WarnContext(ctx, "Failed to persist uploaded file, viewing continues", "file", name, "err", err)
		saved = false
	}

	cat, err := catalog.Build(ctx, reader)
	if err != nil {
		_ = reader.Close()
		writeErrorResponse(w, dto.InternalWithError("Failed to build catalog", err))
		return
	}

	s := h.Svc.Sessions.Open(ctx, name, reader, cat, h.Cfg.Limits)
	token, err := MintSessionToken(h.Cfg.JWTSecret, s.ID())
	if err != nil {
		writeErrorResponse(w, dto.InternalWithError("Failed to mint session token", err))
		return
	}

	slog.InfoContext(ctx, "Database loaded", "file", name, "tables", cat.Len(), "saved", saved, "backend", backend)
	writeJSONResponse(w, &dto.UploadResponse{
		Session:  s.ID().String(),
		Token:    token,
		FileName: name,
		Catalog:  catalogToResponse(cat.Entries()),
		Saved:    saved,
		Backend:  string(backend),
	})
}

// readUpload extracts the file name and bytes from the request.
func readUpload(r *http.Request) (string, []byte, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		f, fh, err := r.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return fh.Filename, data, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	return r.URL.Query().Get("name"), data, nil
}
