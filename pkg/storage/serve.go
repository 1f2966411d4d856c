package storage

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/response"
)

// sniffLen is how many leading bytes are inspected for the content type.
const sniffLen = 3072

// Handler streams objects from d. The object key is the request path, so
// mount it behind http.StripPrefix:
//
//	r.Handle("/uploads/*", "uploads", http.StripPrefix("/uploads/", storage.Handler(disk)))
func Handler(d Disk) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		key := NormalizeKey(r.URL.Path)
		if key == "" {
			response.NotFound(w)
			return
		}

		rc, err := d.Open(r.Context(), key)
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w)
			return
		}
		if err != nil {
			logger.WithCtx(r.Context()).Error("storage: open failed", "key", key, "error", err)
			response.Error(w, http.StatusInternalServerError, "Server Error")
			return
		}
		defer rc.Close()

		head := make([]byte, sniffLen)
		n, err := io.ReadFull(rc, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			response.Error(w, http.StatusInternalServerError, "Server Error")
			return
		}
		head = head[:n]

		w.Header().Set("Content-Type", mimetype.Detect(head).String())
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := w.Write(head); err != nil {
			return
		}
		_, _ = io.Copy(w, rc)
	})
}
