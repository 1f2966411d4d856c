package repositories_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
)

// runContract exercises behaviour every backend must share.
func runContract(t *testing.T, repos repositories.Repositories) {
	t.Run("users", func(t *testing.T) { testUsers(t, repos.Users) })
	t.Run("products", func(t *testing.T) { testProducts(t, repos.Products) })
	t.Run("decrement stock concurrently", func(t *testing.T) { testConcurrentDecrement(t, repos.Products) })
	t.Run("purchases", func(t *testing.T) { testPurchases(t, repos.Purchases) })
	t.Run("prescriptions", func(t *testing.T) { testPrescriptions(t, repos.Prescriptions) })
}

func testUsers(t *testing.T, users repositories.UserRepository) {
	ctx := context.Background()

	pharm := &models.User{Name: "City Pharmacy", Email: "city@example.com", Password: "x", Role: models.RolePharmacy}
	require.NoError(t, users.Create(ctx, pharm))
	assert.True(t, models.ValidID(pharm.ID))
	assert.False(t, pharm.CreatedAt.IsZero())

	dup := &models.User{Name: "Other", Email: "city@example.com", Password: "x", Role: models.RoleCustomer}
	assert.ErrorIs(t, users.Create(ctx, dup), repositories.ErrDuplicate)

	require.NoError(t, users.Create(ctx, &models.User{Name: "Jane", Email: "jane@example.com", Password: "x", Role: models.RoleCustomer}))

	got, err := users.FindByEmail(ctx, "city@example.com")
	require.NoError(t, err)
	assert.Equal(t, pharm.ID, got.ID)
	assert.Equal(t, "x", got.Password)

	_, err = users.FindByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = users.FindByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	list, err := users.ListByRole(ctx, models.RolePharmacy)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "City Pharmacy", list[0].Name)

	ok, err := users.PharmacyExists(ctx, "City Pharmacy")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.PharmacyExists(ctx, "city@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.PharmacyExists(ctx, "Jane")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testProducts(t *testing.T, products repositories.ProductRepository) {
	ctx := context.Background()

	a := &models.Product{Name: "Paracetamol", Price: 5.5, Image: "p.png", Stock: 3, Pharmacy: "CityPharm"}
	b := &models.Product{Name: "Ibuprofen", Price: 7, Image: "i.png", Stock: 0, Pharmacy: "OtherPharm"}
	require.NoError(t, products.Create(ctx, a))
	require.NoError(t, products.Create(ctx, b))

	stored, err := products.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock, "explicit zero stock is kept")

	all, err := products.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := products.List(ctx, "CityPharm")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)

	price := 6.25
	updated, err := products.Update(ctx, a.ID, repositories.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 6.25, updated.Price)
	assert.Equal(t, "Paracetamol", updated.Name)
	assert.Equal(t, 3, updated.Stock)

	_, err = products.Update(ctx, models.NewID(), repositories.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	left, err := products.DecrementStock(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, left.Stock)
	assert.Equal(t, "CityPharm", left.Pharmacy)

	_, err = products.DecrementStock(ctx, b.ID)
	assert.ErrorIs(t, err, repositories.ErrOutOfStock)
	_, err = products.DecrementStock(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, products.Delete(ctx, b.ID))
	assert.ErrorIs(t, products.Delete(ctx, b.ID), repositories.ErrNotFound)
	_, err = products.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func testConcurrentDecrement(t *testing.T, products repositories.ProductRepository) {
	ctx := context.Background()

	p := &models.Product{Name: "Last one", Price: 1, Image: "x", Stock: 1, Pharmacy: "RacePharm"}
	require.NoError(t, products.Create(ctx, p))

	const buyers = 8
	var ok, out int32
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := products.DecrementStock(ctx, p.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, repositories.ErrOutOfStock):
				atomic.AddInt32(&out, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(buyers-1), out)

	final, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.Stock)
}

func testPurchases(t *testing.T, purchases repositories.PurchaseRepository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	older := &models.Purchase{
		CustomerEmail: "jane@example.com",
		CustomerName:  "Jane",
		Pharmacy:      "CityPharm",
		Products:      []models.PurchaseItem{{ID: models.NewID(), Name: "Paracetamol", Price: 5, Quantity: 2, Image: "p.png"}},
		TotalAmount:   10,
		ShippingAddress: models.Address{
			Street: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "USA",
		},
		Status:    models.StatusPending,
		CreatedAt: base.Add(-time.Hour),
	}
	newer := &models.Purchase{
		CustomerEmail: "joe@example.com",
		CustomerName:  "Joe",
		Pharmacy:      "CityPharm",
		Products:      []models.PurchaseItem{},
		TotalAmount:   0,
		Status:        models.StatusPending,
		CreatedAt:     base,
	}
	other := &models.Purchase{CustomerEmail: "x@example.com", CustomerName: "X", Pharmacy: "citypharm", Status: models.StatusPending}
	for _, p := range []*models.Purchase{older, newer, other} {
		require.NoError(t, purchases.Create(ctx, p))
	}

	got, err := purchases.FindByID(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 2, got.Products[0].Quantity)
	assert.Equal(t, "Springfield", got.ShippingAddress.City)

	assert.NotNil(t, newer.Products, "an empty item list stays a list")
	got, err = purchases.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Products)
	assert.Empty(t, got.Products)

	list, err := purchases.ListByPharmacy(ctx, "CityPharm")
	require.NoError(t, err)
	require.Len(t, list, 2, "pharmacy match is exact")
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	empty, err := purchases.ListByPharmacy(ctx, "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	moved, err := purchases.UpdateStatus(ctx, older.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, moved.Status)

	_, err = purchases.UpdateStatus(ctx, older.ID, models.StatusShipped, models.StatusPending)
	assert.ErrorIs(t, err, repositories.ErrStatusChanged)

	moved, err = purchases.UpdateStatus(ctx, older.ID, models.StatusShipped, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, moved.Status)

	_, err = purchases.UpdateStatus(ctx, models.NewID(), models.StatusShipped, models.StatusCompleted)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	addr := models.Address{Street: "2 Elm St", City: "Shelbyville", State: "IL", PostalCode: "62565", Country: "USA"}
	readdressed, err := purchases.UpdateAddress(ctx, older.ID, addr)
	require.NoError(t, err)
	assert.Equal(t, addr, readdressed.ShippingAddress)
	assert.Equal(t, models.StatusShipped, readdressed.Status)
	assert.Equal(t, 10.0, readdressed.TotalAmount)

	_, err = purchases.UpdateAddress(ctx, models.NewID(), addr)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func testPrescriptions(t *testing.T, prescriptions repositories.PrescriptionRepository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	mk := func(pharmacy string, age time.Duration) *models.Prescription {
		p := &models.Prescription{
			Pharmacy:      pharmacy,
			CustomerEmail: "jane@example.com",
			CustomerName:  "Jane",
			File:          "prescriptions/" + models.NewID() + ".pdf",
			Status:        models.PrescriptionPending,
			FileURL:       "http://example.com/ignored",
			CreatedAt:     base.Add(-age),
		}
		require.NoError(t, prescriptions.Create(ctx, p))
		return p
	}
	first := mk("City Pharmacy", 2*time.Hour)
	second := mk("CITY DRUGS", time.Hour)
	mk("Village Chemist", 0)
	percent := mk("100% Care", 0)
	mk("1000 Care", 0)

	got, err := prescriptions.SearchByPharmacy(ctx, "city")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Empty(t, got[0].FileURL, "fileUrl is never persisted")

	got, err = prescriptions.SearchByPharmacy(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, got, 1, "search is literal")
	assert.Equal(t, percent.ID, got[0].ID)

	got, err = prescriptions.SearchByPharmacy(ctx, "c.ty")
	require.NoError(t, err)
	assert.Empty(t, got)
}
