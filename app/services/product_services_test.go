package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/event"
)

func ptr[T any](v T) *T { return &v }

func createProduct(t *testing.T, f *fixture, stock *int) models.Product {
	t.Helper()
	p, err := f.svc.Products.Create(context.Background(), services.CreateProductInput{
		Name: "Paracetamol", Price: ptr(5.0), Image: "u", Pharmacy: "CityPharm", Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductDefaults(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, models.DefaultStock, createProduct(t, f, nil).Stock)
	assert.Equal(t, 0, createProduct(t, f, ptr(0)).Stock)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]services.CreateProductInput{
		"no name":        {Price: ptr(1.0), Image: "u", Pharmacy: "P"},
		"no price":       {Name: "A", Image: "u", Pharmacy: "P"},
		"no image":       {Name: "A", Price: ptr(1.0), Pharmacy: "P"},
		"blank pharmacy": {Name: "A", Price: ptr(1.0), Image: "u", Pharmacy: " "},
		"negative price": {Name: "A", Price: ptr(-1.0), Image: "u", Pharmacy: "P"},
		"negative stock": {Name: "A", Price: ptr(1.0), Image: "u", Pharmacy: "P", Stock: ptr(-1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Products.Create(ctx, in)
			requireKind(t, err, apperr.KindValidation)
		})
	}

	all, err := f.svc.Products.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateProductStrictPharmacyRefs(t *testing.T) {
	config.Set("STRICT_PHARMACY_REFS", "true")
	t.Cleanup(func() { config.Set("STRICT_PHARMACY_REFS", "false") })
	f := newFixture(t)
	ctx := context.Background()

	in := services.CreateProductInput{Name: "A", Price: ptr(1.0), Image: "u", Pharmacy: "City Pharmacy"}
	_, err := f.svc.Products.Create(ctx, in)
	requireKind(t, err, apperr.KindValidation)

	register(t, f, "City Pharmacy", "city@example.com", models.RolePharmacy)
	_, err = f.svc.Products.Create(ctx, in)
	assert.NoError(t, err)
}

func TestListProductsByPharmacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createProduct(t, f, nil)
	_, err := f.svc.Products.Create(ctx, services.CreateProductInput{
		Name: "Ibuprofen", Price: ptr(3.0), Image: "u", Pharmacy: "OtherPharm",
	})
	require.NoError(t, err)

	mine, err := f.svc.Products.List(ctx, "CityPharm")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Paracetamol", mine[0].Name)

	all, err := f.svc.Products.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := createProduct(t, f, nil)

	got, err := f.svc.Products.Update(ctx, p.ID, services.UpdateProductInput{Price: ptr(7.5), Name: ptr(" Panadol ")})
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.Price)
	assert.Equal(t, "Panadol", got.Name)
	assert.Equal(t, "u", got.Image)
	assert.Equal(t, models.DefaultStock, got.Stock)

	same, err := f.svc.Products.Update(ctx, p.ID, services.UpdateProductInput{})
	require.NoError(t, err)
	assert.Equal(t, got.Price, same.Price)

	_, err = f.svc.Products.Update(ctx, p.ID, services.UpdateProductInput{Price: ptr(-1.0)})
	requireKind(t, err, apperr.KindValidation)
	_, err = f.svc.Products.Update(ctx, p.ID, services.UpdateProductInput{Name: ptr("")})
	requireKind(t, err, apperr.KindValidation)
	_, err = f.svc.Products.Update(ctx, p.ID, services.UpdateProductInput{Stock: ptr(-3)})
	requireKind(t, err, apperr.KindValidation)

	_, err = f.svc.Products.Update(ctx, models.NewID(), services.UpdateProductInput{Price: ptr(1.0)})
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.svc.Products.Update(ctx, "not-an-id", services.UpdateProductInput{Price: ptr(1.0)})
	requireKind(t, err, apperr.KindNotFound)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := createProduct(t, f, nil)

	require.NoError(t, f.svc.Products.Delete(ctx, p.ID))
	requireKind(t, f.svc.Products.Delete(ctx, p.ID), apperr.KindNotFound)
	requireKind(t, f.svc.Products.Delete(ctx, "xyz"), apperr.KindNotFound)
}

func TestBuyLastUnitThenOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	changed := f.listen(event.ProductStockChanged)
	p := createProduct(t, f, ptr(1))

	res, err := f.svc.Products.Buy(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.RemainingStock)
	e := waitEvent(t, changed)
	assert.Equal(t, event.ProductStockChanged, e.Name)
	assert.Equal(t, "CityPharm", e.Pharmacy)
	assert.Equal(t, 0, e.Data.(models.Product).Stock)

	_, err = f.svc.Products.Buy(ctx, p.ID)
	requireKind(t, err, apperr.KindOutOfStock)
	assert.Equal(t, "Product out of stock", err.(*apperr.Error).Message)

	_, err = f.svc.Products.Buy(ctx, models.NewID())
	requireKind(t, err, apperr.KindNotFound)
}

func TestConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := createProduct(t, f, ptr(3))

	const buyers = 20
	var ok, out atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Products.Buy(context.Background(), p.ID)
			if err == nil {
				ok.Add(1)
			} else if apperr.Is(err, apperr.KindOutOfStock) {
				out.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, int32(buyers-3), out.Load())

	all, err := f.svc.Products.List(context.Background(), "CityPharm")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].Stock)
}
