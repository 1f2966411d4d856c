// Package kernel wires the stores, services and middleware into the HTTP
// handler served by internal/server.
package kernel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/app/routes"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/database/migrations"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/cache"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/middleware"
	"github.com/shashiranjanraj/medcart/pkg/reqid"
	"github.com/shashiranjanraj/medcart/pkg/response"
	"github.com/shashiranjanraj/medcart/pkg/router"
	"github.com/shashiranjanraj/medcart/pkg/storage"
	"github.com/shashiranjanraj/medcart/pkg/workerpool"
	"github.com/shashiranjanraj/medcart/pkg/ws"
)

// eventQueue bounds events waiting for a worker.
const eventQueue = 256

// Options are the collaborators the kernel is built from. Zero fields get
// in-process defaults.
type Options struct {
	Repos   repositories.Repositories
	Backend *repositories.Backend
	Cache   *cache.Store
	Disk    storage.Disk
	Tokens  *auth.Issuer

	Workers        int
	RateLimit      int
	AuthRequired   bool
	UploadMaxBytes int64
}

// Kernel owns everything a running server needs.
type Kernel struct {
	Services *services.Services
	Bus      *event.Bus
	Hub      *ws.Hub
	Backend  *repositories.Backend

	cache   *cache.Store
	pool    *workerpool.Pool
	limiter *middleware.RateLimiter
	router  *router.Router
	cancel  context.CancelFunc
}

// Boot connects to the configured store, cache and disk and builds the
// kernel from them.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	repos, backend, err := repositories.Open(ctx)
	if err != nil {
		return nil, err
	}
	if backend.Mongo != nil {
		if err := migrations.EnsureMongoIndexes(ctx, backend.Mongo); err != nil {
			_ = backend.Close(ctx)
			return nil, err
		}
	}
	if err := storage.Connect(ctx); err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}

	return New(Options{
		Repos:          repos,
		Backend:        backend,
		Cache:          cache.FromConfig(ctx),
		Disk:           storage.Default(),
		Tokens:         auth.FromConfig(),
		Workers:        config.EventWorkers(),
		RateLimit:      config.RateLimitPerMinute(),
		AuthRequired:   config.AuthRequired(),
		UploadMaxBytes: config.UploadMaxBytes(),
	})
}

// New builds the kernel from explicit collaborators and starts the
// background loops. Call Shutdown to stop them.
func New(o Options) (*Kernel, error) {
	if o.Disk == nil {
		return nil, errors.New("kernel: no storage disk")
	}
	if o.Repos.Users == nil {
		o.Repos = repositories.NewMemory()
	}
	if o.Backend == nil {
		o.Backend = &repositories.Backend{Driver: "memory"}
	}
	if o.Tokens == nil {
		o.Tokens = auth.FromConfig()
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.UploadMaxBytes <= 0 {
		o.UploadMaxBytes = config.UploadMaxBytes()
	}

	k := &Kernel{
		Backend: o.Backend,
		Hub:     ws.NewHub(),
		cache:   o.Cache,
		pool:    workerpool.New(o.Workers, eventQueue),
		limiter: middleware.NewRateLimiter(o.RateLimit, time.Minute),
	}
	k.Bus = event.New(k.pool)
	for _, name := range []string{
		event.PurchaseCreated, event.PurchaseStatusChanged, event.PrescriptionUploaded, event.ProductStockChanged,
	} {
		k.Bus.Listen(name, k.Hub.Relay)
	}

	k.Services = services.New(services.Deps{
		Repos:  o.Repos,
		Cache:  o.Cache,
		Events: k.Bus,
		Disk:   o.Disk,
		Tokens: o.Tokens,
	})

	r := router.New()
	// Outermost first. Recovery sits inside the request ID and logger so a
	// panic is logged against its request.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(k.limiter.Middleware)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	err := routes.Register(r, routes.Deps{
		Services:       k.Services,
		Tokens:         o.Tokens,
		Disk:           o.Disk,
		Hub:            k.Hub,
		Health:         o.Backend,
		AuthRequired:   o.AuthRequired,
		UploadMaxBytes: o.UploadMaxBytes,
	})
	if err != nil {
		k.pool.Shutdown()
		k.limiter.Close()
		return nil, err
	}
	k.router = r

	hubCtx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	go k.Hub.Run(hubCtx)

	return k, nil
}

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table, e.g. for `medcart route:list`.
func (k *Kernel) Router() *router.Router { return k.router }

// Ping reports whether the backing store is reachable.
func (k *Kernel) Ping(ctx context.Context) error { return k.Backend.Ping(ctx) }

// Shutdown stops background work and closes connections. Queued events are
// delivered before the hub goes away.
func (k *Kernel) Shutdown(ctx context.Context) {
	k.limiter.Close()
	k.pool.Shutdown()
	k.Hub.Close()
	k.cancel()
	if err := k.cache.Close(); err != nil {
		logger.Warn("cache close failed", "error", err)
	}
	if err := k.Backend.Close(ctx); err != nil {
		logger.Warn("database close failed", "error", err)
	}
}
