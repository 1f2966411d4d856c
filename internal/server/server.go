// Package server runs the HTTP API and the optional gRPC health service until
// the process is told to stop.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/internal/kernel"
	"github.com/shashiranjanraj/medcart/pkg/grpc"
	"github.com/shashiranjanraj/medcart/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Start boots the kernel and serves until SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	k, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	return Serve(ctx, k, ":"+config.AppPort(), config.GRPCPort())
}

// Serve runs k on addr until ctx is done, then shuts everything down within
// shutdownTimeout. gRPC is only started when grpcPort is set.
func Serve(ctx context.Context, k *kernel.Kernel, addr, grpcPort string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		k.Shutdown(context.Background())
		return err
	}
	return serve(ctx, k, lis, grpcPort)
}

func serve(ctx context.Context, k *kernel.Kernel, lis net.Listener, grpcPort string) error {
	var rpc *grpc.Server
	if grpcPort != "" {
		s, err := grpc.Start(grpcPort, k)
		if err != nil {
			lis.Close()
			k.Shutdown(context.Background())
			return err
		}
		rpc = s
	}

	srv := &http.Server{
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("medcart listening", "addr", lis.Addr().String(), "env", config.AppEnv(),
			"db", k.Backend.Driver)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	rpc.Stop(shutdownCtx)
	k.Shutdown(shutdownCtx)

	return serveErr
}
