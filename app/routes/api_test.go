package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/ws"
)

// plainWriter cannot flush, so an event stream cannot start on it.
type plainWriter struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return w.body.Write(b) }
func (w *plainWriter) WriteHeader(code int)        { w.code = code }

func TestPharmacyStreamLogsWhyItEnded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	r := chi.NewRouter()
	r.Get("/sse/pharmacy/{name}", pharmacyStream(hub))

	var logs bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/sse/pharmacy/CityPharm", nil)
	req = req.WithContext(logger.InjectLogger(req.Context(), logger.New(&logs, false)))
	w := &plainWriter{header: http.Header{}}

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.code)
	assert.Contains(t, logs.String(), "sse stream ended")
	assert.Contains(t, logs.String(), "room=CityPharm")
	assert.Contains(t, logs.String(), "cannot flush")
}
