package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/internal/kernel"
	"github.com/shashiranjanraj/medcart/pkg/storage"
)

func TestServeStopsOnCancel(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	k, err := kernel.New(kernel.Options{Disk: disk})
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, k, lis, "") }()

	res, err := http.Get("http://" + lis.Addr().String() + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
