// Package repositories persists medcart records. Each store has a memory,
// MongoDB and gorm (SQL) implementation behind the same interface; which one
// is used is decided by DB_DRIVER.
package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/medcart/app/models"
)

var (
	// ErrNotFound is returned when no record matches the id. Malformed ids
	// also yield ErrNotFound.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique key (user email) is taken.
	ErrDuplicate = errors.New("duplicate key")

	// ErrOutOfStock is returned by DecrementStock when stock is already 0.
	ErrOutOfStock = errors.New("out of stock")

	// ErrStatusChanged is returned by a guarded UpdateStatus when the purchase
	// is no longer in one of the expected statuses.
	ErrStatusChanged = errors.New("purchase status changed concurrently")
)

type UserRepository interface {
	// Create fails with ErrDuplicate when the email is already registered.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	// PharmacyExists reports whether a pharmacy account has ref as its name
	// or email.
	PharmacyExists(ctx context.Context, ref string) (bool, error)
}

// ProductPatch holds the fields of a partial product update; nil fields are
// left untouched.
type ProductPatch struct {
	Name     *string
	Price    *float64
	Image    *string
	Stock    *int
	Pharmacy *string
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Image == nil && p.Stock == nil && p.Pharmacy == nil
}

// Apply merges the patch into prod.
func (p ProductPatch) Apply(prod *models.Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Pharmacy != nil {
		prod.Pharmacy = *p.Pharmacy
	}
}

type ProductRepository interface {
	// List returns all products, or those of one pharmacy when pharmacy is
	// non-empty. Order is unspecified.
	List(ctx context.Context, pharmacy string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	// Update applies patch in a single write and returns the stored record.
	Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id string) error
	// DecrementStock removes one unit if stock > 0 as one conditional write
	// and returns the product as stored afterwards.
	DecrementStock(ctx context.Context, id string) (models.Product, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *models.Purchase) error
	FindByID(ctx context.Context, id string) (models.Purchase, error)
	// ListByPharmacy returns purchases whose pharmacy equals name exactly,
	// newest first.
	ListByPharmacy(ctx context.Context, name string) ([]models.Purchase, error)
	// UpdateStatus sets the status. When from is non-empty the write only
	// happens if the current status is one of from; otherwise it fails with
	// ErrStatusChanged.
	UpdateStatus(ctx context.Context, id string, next models.PurchaseStatus, from ...models.PurchaseStatus) (models.Purchase, error)
	UpdateAddress(ctx context.Context, id string, addr models.Address) (models.Purchase, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *models.Prescription) error
	// SearchByPharmacy matches needle as a literal, case-insensitive substring
	// of the pharmacy field, newest first.
	SearchByPharmacy(ctx context.Context, needle string) ([]models.Prescription, error)
}

// Repositories bundles one implementation of each store.
type Repositories struct {
	Users         UserRepository
	Products      ProductRepository
	Purchases     PurchaseRepository
	Prescriptions PrescriptionRepository
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func statusIn(s models.PurchaseStatus, set []models.PurchaseStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
