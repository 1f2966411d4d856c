// Package services holds medcart's business rules. Every exported method
// returns either a result or an *apperr.Error, so the HTTP, GraphQL and CLI
// layers never inspect repository errors themselves.
package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/cache"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/storage"
	"github.com/shashiranjanraj/medcart/pkg/validate"
)

// Deps are the collaborators shared by all services. Cache and Events may be
// nil.
type Deps struct {
	Repos  repositories.Repositories
	Cache  *cache.Store
	Events *event.Bus
	Disk   storage.Disk
	Tokens *auth.Issuer
}

type Services struct {
	Auth          *AuthService
	Products      *ProductService
	Purchases     *PurchaseService
	Prescriptions *PrescriptionService
}

// New builds every service, reading behaviour switches from config.
func New(d Deps) *Services {
	strictRefs := config.StrictPharmacyRefs()

	return &Services{
		Auth:     NewAuthService(d.Repos.Users, d.Tokens, d.Cache),
		Products: NewProductService(d.Repos.Products, d.Repos.Users, d.Cache, d.Events, strictRefs),
		Purchases: NewPurchaseService(d.Repos.Purchases, d.Repos.Users, d.Events, PurchaseOptions{
			DefaultCountry:     config.PurchaseDefaultCountry(),
			StrictTransitions:  config.PurchaseStrictTransitions(),
			StrictPharmacyRefs: strictRefs,
		}),
		Prescriptions: NewPrescriptionService(d.Repos.Prescriptions, d.Disk, d.Events, config.UploadMaxBytes()),
	}
}

// storeErr maps a repository failure onto the public error kinds.
func storeErr(err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal("Server Error", err)
}

// invalid validates s and returns a Validation error carrying every field
// message, or nil. message overrides the first field message when set.
func invalid(s interface{}, message string) error {
	errs := validate.Struct(s)
	if !validate.HasErrors(errs) {
		return nil
	}
	if message == "" {
		message = validate.First(errs)
	}
	return apperr.ValidationFields(message, errs)
}

// checkPharmacy verifies that ref names a pharmacy account.
func checkPharmacy(ctx context.Context, users repositories.UserRepository, ref string) error {
	ok, err := users.PharmacyExists(ctx, ref)
	if err != nil {
		return apperr.Internal("Server Error", err)
	}
	if !ok {
		return apperr.ValidationFields("Unknown pharmacy", map[string]string{
			"pharmacy": "The pharmacy must name a registered pharmacy.",
		})
	}
	return nil
}
