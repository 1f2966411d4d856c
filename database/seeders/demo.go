package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

var demoPharmacies = []models.User{
	{Name: "CityPharm", Email: "citypharm@example.com", Address: "12 Market St, Springfield", Phone: "555-0101"},
	{Name: "HealthPlus", Email: "healthplus@example.com", Address: "4 Oak Ave, Shelbyville", Phone: "555-0102"},
}

var demoProducts = []models.Product{
	{Name: "Paracetamol 500mg", Price: 4.99, Image: "https://images.example.com/paracetamol.jpg", Stock: 40, Pharmacy: "CityPharm"},
	{Name: "Ibuprofen 200mg", Price: 6.49, Image: "https://images.example.com/ibuprofen.jpg", Stock: 25, Pharmacy: "CityPharm"},
	{Name: "Vitamin C 1000mg", Price: 9.99, Image: "https://images.example.com/vitamin-c.jpg", Stock: 60, Pharmacy: "HealthPlus"},
	{Name: "Cough Syrup", Price: 7.25, Image: "https://images.example.com/cough-syrup.jpg", Stock: 0, Pharmacy: "HealthPlus"},
}

func init() {
	Register("pharmacies", seedPharmacies)
	Register("products", seedProducts)
}

func seedPharmacies(ctx context.Context, repos repositories.Repositories) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, u := range demoPharmacies {
		u.Password = hash
		u.Role = models.RolePharmacy
		if err := repos.Users.Create(ctx, &u); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
	}
	return nil
}

// seedProducts only fills a pharmacy that has no products yet.
func seedProducts(ctx context.Context, repos repositories.Repositories) error {
	for _, p := range demoProducts {
		existing, err := repos.Products.List(ctx, p.Pharmacy)
		if err != nil {
			return err
		}
		if hasProduct(existing, p.Name) {
			continue
		}
		if err := repos.Products.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

func hasProduct(list []models.Product, name string) bool {
	for _, p := range list {
		if p.Name == name {
			return true
		}
	}
	return false
}
