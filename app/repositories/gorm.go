package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/medcart/app/models"
)

// NewGorm returns repositories backed by a SQL database through gorm.
func NewGorm(db *gorm.DB) Repositories {
	return Repositories{
		Users:         gormUsers{db},
		Products:      gormProducts{db},
		Purchases:     gormPurchases{db},
		Prescriptions: gormPrescriptions{db},
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicate recognises unique violations from drivers that do not
// translate them into gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// likeEscaper escapes LIKE wildcards with '!' which every supported dialect
// accepts in an ESCAPE clause.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

// ─── Users ───────────────────────────────────────────────────────────────────

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	touch(&u.CreatedAt, &u.UpdatedAt)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("sql users: insert: %w", err)
	}
	return nil
}

func (r gormUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return u, notFound(err)
}

func (r gormUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return u, notFound(err)
}

func (r gormUsers) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	out := make([]models.User, 0)
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id asc").Find(&out).Error
	return out, err
}

func (r gormUsers) PharmacyExists(ctx context.Context, ref string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND (name = ? OR email = ?)", models.RolePharmacy, ref, strings.ToLower(ref)).
		Count(&n).Error
	return n > 0, err
}

// ─── Products ────────────────────────────────────────────────────────────────

type gormProducts struct{ db *gorm.DB }

func (r gormProducts) List(ctx context.Context, pharmacy string) ([]models.Product, error) {
	out := make([]models.Product, 0)
	q := r.db.WithContext(ctx)
	if pharmacy != "" {
		q = q.Where("pharmacy = ?", pharmacy)
	}
	return out, q.Find(&out).Error
}

func (r gormProducts) Create(ctx context.Context, p *models.Product) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("sql products: insert: %w", err)
	}
	return nil
}

func (r gormProducts) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, notFound(err)
}

func (r gormProducts) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	var out models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return notFound(err)
		}

		cols := map[string]interface{}{"updated_at": now()}
		if patch.Name != nil {
			cols["name"] = *patch.Name
		}
		if patch.Price != nil {
			cols["price"] = *patch.Price
		}
		if patch.Image != nil {
			cols["image"] = *patch.Image
		}
		if patch.Stock != nil {
			cols["stock"] = *patch.Stock
		}
		if patch.Pharmacy != nil {
			cols["pharmacy"] = *patch.Pharmacy
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	return out, err
}

func (r gormProducts) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("sql products: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock relies on the conditional UPDATE; the surrounding
// transaction only makes the follow-up read see the same row version.
func (r gormProducts) DecrementStock(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock > 0", id).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - 1"),
				"updated_at": now(),
			})
		if res.Error != nil {
			return res.Error
		}

		var p models.Product
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return notFound(err)
		}
		if res.RowsAffected == 0 {
			return ErrOutOfStock
		}
		out = p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return out, nil
}

// ─── Purchases ───────────────────────────────────────────────────────────────

type gormPurchases struct{ db *gorm.DB }

func (r gormPurchases) Create(ctx context.Context, p *models.Purchase) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if p.Products == nil {
		p.Products = []models.PurchaseItem{}
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("sql purchases: insert: %w", err)
	}
	return nil
}

func (r gormPurchases) FindByID(ctx context.Context, id string) (models.Purchase, error) {
	var p models.Purchase
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, notFound(err)
}

func (r gormPurchases) ListByPharmacy(ctx context.Context, name string) ([]models.Purchase, error) {
	out := make([]models.Purchase, 0)
	err := r.db.WithContext(ctx).Where("pharmacy = ?", name).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

func (r gormPurchases) UpdateStatus(ctx context.Context, id string, next models.PurchaseStatus, from ...models.PurchaseStatus) (models.Purchase, error) {
	var out models.Purchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return notFound(err)
		}

		q := tx.Model(&models.Purchase{}).Where("id = ?", id)
		if len(from) > 0 {
			q = q.Where("status IN ?", from)
		}
		res := q.Updates(map[string]interface{}{"status": next, "updated_at": now()})
		if res.Error != nil {
			return res.Error
		}
		if len(from) > 0 && res.RowsAffected == 0 {
			return ErrStatusChanged
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	return out, err
}

func (r gormPurchases) UpdateAddress(ctx context.Context, id string, addr models.Address) (models.Purchase, error) {
	var out models.Purchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return notFound(err)
		}
		err := tx.Model(&models.Purchase{}).Where("id = ?", id).Updates(map[string]interface{}{
			"shipping_street":      addr.Street,
			"shipping_city":        addr.City,
			"shipping_state":       addr.State,
			"shipping_postal_code": addr.PostalCode,
			"shipping_country":     addr.Country,
			"updated_at":           now(),
		}).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	return out, err
}

// ─── Prescriptions ───────────────────────────────────────────────────────────

type gormPrescriptions struct{ db *gorm.DB }

func (r gormPrescriptions) Create(ctx context.Context, p *models.Prescription) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("sql prescriptions: insert: %w", err)
	}
	return nil
}

func (r gormPrescriptions) SearchByPharmacy(ctx context.Context, needle string) ([]models.Prescription, error) {
	out := make([]models.Prescription, 0)
	pattern := "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(pharmacy) LIKE ? ESCAPE '!'", pattern).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}
