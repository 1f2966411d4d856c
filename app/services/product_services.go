package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/cache"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
)

const (
	productsCacheNS = "products"
	productNotFound = "Product not found"
)

// CreateProductInput uses pointers so a missing price can be told apart
// from a zero one.
type CreateProductInput struct {
	Name     string   `json:"name"     validate:"notblank"`
	Price    *float64 `json:"price"    validate:"required,gte=0"`
	Image    string   `json:"image"    validate:"notblank"`
	Pharmacy string   `json:"pharmacy" validate:"notblank"`
	Stock    *int     `json:"stock"    validate:"omitempty,gte=0"`
}

// UpdateProductInput is a partial update; nil fields are left as they are.
type UpdateProductInput struct {
	Name     *string  `json:"name"     validate:"omitempty,notblank"`
	Price    *float64 `json:"price"    validate:"omitempty,gte=0"`
	Image    *string  `json:"image"    validate:"omitempty,notblank"`
	Stock    *int     `json:"stock"    validate:"omitempty,gte=0"`
	Pharmacy *string  `json:"pharmacy" validate:"omitempty,notblank"`
}

func (in UpdateProductInput) patch() repositories.ProductPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	return repositories.ProductPatch{
		Name:     trim(in.Name),
		Price:    in.Price,
		Image:    trim(in.Image),
		Stock:    in.Stock,
		Pharmacy: trim(in.Pharmacy),
	}
}

// BuyResult is returned by a successful single-unit purchase.
type BuyResult struct {
	RemainingStock int `json:"remainingStock"`
}

type ProductService struct {
	products   repositories.ProductRepository
	users      repositories.UserRepository
	cache      *cache.Store
	events     *event.Bus
	strictRefs bool
}

func NewProductService(products repositories.ProductRepository, users repositories.UserRepository,
	c *cache.Store, events *event.Bus, strictRefs bool) *ProductService {
	return &ProductService{products: products, users: users, cache: c, events: events, strictRefs: strictRefs}
}

// List returns all products, or those whose pharmacy equals pharmacy.
func (s *ProductService) List(ctx context.Context, pharmacy string) ([]models.Product, error) {
	key, cached := s.cache.Key(ctx, productsCacheNS, pharmacy)

	var out []models.Product
	if cached && s.cache.Get(ctx, key, &out) {
		return out, nil
	}

	out, err := s.products.List(ctx, pharmacy)
	if err != nil {
		return nil, apperr.Internal("Server Error", err)
	}
	if cached {
		s.cache.Set(ctx, key, out)
	}
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	in.Pharmacy = strings.TrimSpace(in.Pharmacy)

	if err := invalid(in, "Please provide all required fields (name, price, image, pharmacy)"); err != nil {
		return models.Product{}, err
	}
	if s.strictRefs {
		if err := checkPharmacy(ctx, s.users, in.Pharmacy); err != nil {
			return models.Product{}, err
		}
	}

	p := models.Product{
		Name:     in.Name,
		Price:    *in.Price,
		Image:    in.Image,
		Stock:    models.DefaultStock,
		Pharmacy: in.Pharmacy,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}

	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, apperr.Internal("Server Error", err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Update merges in into the stored product. An empty update returns the
// product unchanged.
func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (models.Product, error) {
	if !models.ValidID(id) {
		return models.Product{}, apperr.NotFound(productNotFound)
	}
	if err := invalid(in, ""); err != nil {
		return models.Product{}, err
	}

	patch := in.patch()
	if patch.Empty() {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return models.Product{}, storeErr(err, productNotFound)
		}
		return p, nil
	}
	if s.strictRefs && patch.Pharmacy != nil {
		if err := checkPharmacy(ctx, s.users, *patch.Pharmacy); err != nil {
			return models.Product{}, err
		}
	}

	p, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return models.Product{}, storeErr(err, productNotFound)
	}
	s.invalidate(ctx)
	if patch.Stock != nil {
		s.events.Fire(event.ProductStockChanged, p.Pharmacy, p)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if !models.ValidID(id) {
		return apperr.NotFound(productNotFound)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return storeErr(err, productNotFound)
	}
	s.invalidate(ctx)
	return nil
}

// Buy takes one unit out of stock. The check and the decrement are a single
// conditional write in the store, so concurrent buyers can never oversell.
func (s *ProductService) Buy(ctx context.Context, id string) (BuyResult, error) {
	if !models.ValidID(id) {
		metrics.RecordStockPurchase("not_found")
		return BuyResult{}, apperr.NotFound(productNotFound)
	}

	p, err := s.products.DecrementStock(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrOutOfStock):
		metrics.RecordStockPurchase("out_of_stock")
		return BuyResult{}, apperr.OutOfStock("Product out of stock")
	case errors.Is(err, repositories.ErrNotFound):
		metrics.RecordStockPurchase("not_found")
		return BuyResult{}, apperr.NotFound(productNotFound)
	case err != nil:
		metrics.RecordStockPurchase("error")
		return BuyResult{}, apperr.Internal("Server Error", err)
	}

	metrics.RecordStockPurchase("ok")
	s.invalidate(ctx)
	s.events.Fire(event.ProductStockChanged, p.Pharmacy, p)
	logger.WithCtx(ctx).Debug("product bought", "product_id", id, "remaining", p.Stock)
	return BuyResult{RemainingStock: p.Stock}, nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	s.cache.Bump(ctx, productsCacheNS)
}
