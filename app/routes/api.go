// Package routes mounts every medcart endpoint on the router.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/medcart/app/controllers"
	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/ctx"
	"github.com/shashiranjanraj/medcart/pkg/graphql"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/middleware"
	"github.com/shashiranjanraj/medcart/pkg/rbac"
	"github.com/shashiranjanraj/medcart/pkg/response"
	"github.com/shashiranjanraj/medcart/pkg/router"
	"github.com/shashiranjanraj/medcart/pkg/sse"
	"github.com/shashiranjanraj/medcart/pkg/storage"
	"github.com/shashiranjanraj/medcart/pkg/ws"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Services *services.Services
	Tokens   *auth.Issuer
	Disk     storage.Disk
	Hub      *ws.Hub
	Health   Pinger
	// AuthRequired puts product writes and purchase updates behind a
	// pharmacy or admin bearer token.
	AuthRequired   bool
	UploadMaxBytes int64
}

// Register mounts the REST API and the auxiliary endpoints.
func Register(r *router.Router, d Deps) error {
	registerAPI(r, d)

	schema, err := graphql.NewSchema(controllers.NewGraphQLSource(d.Services))
	if err != nil {
		return err
	}
	r.Post("/graphql", "graphql", graphql.Handler(schema))

	r.Get("/healthz", "healthz", healthz(d.Health))
	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Handle("/uploads/*", "uploads", http.StripPrefix("/uploads/", storage.Handler(d.Disk)))
	r.Get("/ws/pharmacy/{name}", "ws.pharmacy", func(w http.ResponseWriter, req *http.Request) {
		d.Hub.Upgrade(w, req, chi.URLParam(req, "name"))
	})
	r.Get("/sse/pharmacy/{name}", "sse.pharmacy", pharmacyStream(d.Hub))
	return nil
}

func registerAPI(r *router.Router, d Deps) {
	authC := controllers.NewAuthController(d.Services.Auth)
	productC := controllers.NewProductController(d.Services.Products)
	purchaseC := controllers.NewPurchaseController(d.Services.Purchases)
	prescriptionC := controllers.NewPrescriptionController(d.Services.Prescriptions, d.UploadMaxBytes)

	bearer := middleware.Auth(d.Tokens)
	var staff []router.Middleware
	if d.AuthRequired {
		staff = []router.Middleware{bearer, rbac.HasRole(models.RolePharmacy, models.RoleAdmin)}
	}

	api := r.Group("/api")

	a := api.Group("/auth")
	a.Post("/register", "auth.register", ctx.Wrap(authC.Register))
	a.Post("/login", "auth.login", ctx.Wrap(authC.Login))
	a.Get("/pharmacy", "auth.pharmacies", ctx.Wrap(authC.Pharmacies))
	a.Get("/me", "auth.me", ctx.Wrap(authC.Me), bearer)

	products := api.Group("/products")
	products.Get("/", "products.index", ctx.Wrap(productC.Index))
	products.Post("/", "products.store", ctx.Wrap(productC.Store), staff...)
	products.Put("/{id}", "products.update", ctx.Wrap(productC.Update), staff...)
	products.Delete("/{id}", "products.destroy", ctx.Wrap(productC.Destroy), staff...)
	products.Post("/{id}/buy", "products.buy", ctx.Wrap(productC.Buy))

	purchases := api.Group("/purchases")
	purchases.Post("/", "purchases.store", ctx.Wrap(purchaseC.Store))
	purchases.Get("/pharmacy/{name}", "purchases.pharmacy", ctx.Wrap(purchaseC.ByPharmacy))
	purchases.Get("/{id}", "purchases.show", ctx.Wrap(purchaseC.Show))
	purchases.Put("/{id}/status", "purchases.status", ctx.Wrap(purchaseC.UpdateStatus), staff...)
	purchases.Put("/{id}/address", "purchases.address", ctx.Wrap(purchaseC.UpdateAddress), staff...)

	prescriptions := api.Group("/prescriptions")
	prescriptions.Post("/", "prescriptions.store", ctx.Wrap(prescriptionC.Store))
	prescriptions.Get("/pharmacy/{name}", "prescriptions.pharmacy", ctx.Wrap(prescriptionC.ByPharmacy))
}

func healthz(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(pingCtx); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}

// pharmacyStream serves a pharmacy room as Server-Sent Events.
func pharmacyStream(hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "name")
		msgs, leave := hub.Subscribe(room)
		defer leave()
		if err := sse.Pipe(w, r, msgs); err != nil {
			logger.WithCtx(r.Context()).Debug("sse stream ended", "room", room, "error", err)
		}
	}
}
