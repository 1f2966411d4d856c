package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newDisk(t *testing.T) *storage.LocalDisk {
	t.Helper()
	d, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:5000/uploads/")
	require.NoError(t, err)
	return d
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		`uploads\prescriptions\a.pdf`: "prescriptions/a.pdf",
		"/uploads/prescriptions/a.pdf": "prescriptions/a.pdf",
		"prescriptions/a.pdf":          "prescriptions/a.pdf",
		"prescriptions//b.png":         "prescriptions/b.png",
		"../etc/passwd":                "",
		"uploads/../../x":              "",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, storage.NormalizeKey(in), in)
	}
}

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := newDisk(t)

	require.NoError(t, d.Put(ctx, "prescriptions/a.txt", strings.NewReader("hello"), "text/plain"))

	rc, err := d.Open(ctx, `uploads\prescriptions\a.txt`)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(data))

	assert.Equal(t, "http://localhost:5000/uploads/prescriptions/a.txt", d.URL("prescriptions/a.txt"))

	require.NoError(t, d.Delete(ctx, "prescriptions/a.txt"))
	_, err = d.Open(ctx, "prescriptions/a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, d.Delete(ctx, "prescriptions/a.txt"))
}

func TestLocalDiskOpenMissing(t *testing.T) {
	_, err := newDisk(t).Open(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalDiskRejectsEscapingKeys(t *testing.T) {
	err := newDisk(t).Put(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestHandlerServesWithSniffedType(t *testing.T) {
	ctx := context.Background()
	d := newDisk(t)
	require.NoError(t, d.Put(ctx, "prescriptions/p.png", strings.NewReader(string(pngHeader)), "image/png"))

	srv := http.StripPrefix("/uploads/", storage.Handler(d))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/prescriptions/p.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/prescriptions/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
