package controllers

import (
	"context"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/graphql"
)

// graphSource serves GraphQL queries from the same services as the REST
// handlers.
type graphSource struct {
	svc *services.Services
}

func NewGraphQLSource(svc *services.Services) graphql.Source {
	return graphSource{svc: svc}
}

func (g graphSource) Products(ctx context.Context, pharmacy string) ([]models.Product, error) {
	return g.svc.Products.List(ctx, pharmacy)
}

func (g graphSource) Purchase(ctx context.Context, id string) (models.Purchase, error) {
	return g.svc.Purchases.Get(ctx, id)
}

func (g graphSource) PurchasesByPharmacy(ctx context.Context, name string) ([]models.Purchase, error) {
	return g.svc.Purchases.ListByPharmacy(ctx, name)
}

func (g graphSource) PrescriptionsByPharmacy(ctx context.Context, name string) ([]models.Prescription, error) {
	return g.svc.Prescriptions.ListByPharmacy(ctx, name)
}

func (g graphSource) Pharmacies(ctx context.Context) ([]models.PharmacySummary, error) {
	return g.svc.Auth.ListPharmacies(ctx)
}
