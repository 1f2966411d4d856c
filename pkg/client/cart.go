package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/services"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrMixedPharmacies = errors.New("cart holds products from more than one pharmacy")
)

// Cart is a customer's basket. It is not safe for concurrent use.
type Cart struct {
	items    []models.PurchaseItem
	pharmacy string
}

// Add puts one unit of p in the cart. Quantity never exceeds p.Stock.
func (c *Cart) Add(p models.Product) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	if c.pharmacy != "" && len(c.items) > 0 && p.Pharmacy != c.pharmacy {
		return ErrMixedPharmacies
	}
	c.pharmacy = p.Pharmacy

	for i := range c.items {
		if c.items[i].ID != p.ID {
			continue
		}
		if c.items[i].Quantity >= p.Stock {
			return fmt.Errorf("%w: only %d of %s available", ErrOutOfStock, p.Stock, p.Name)
		}
		c.items[i].Quantity++
		return nil
	}

	c.items = append(c.items, models.PurchaseItem{
		ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, Quantity: 1,
	})
	return nil
}

// Remove drops the line at index i.
func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("cart: no item at index %d", i)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Cart) Items() []models.PurchaseItem {
	out := make([]models.PurchaseItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// Total is the sum of price times quantity over every line.
func (c *Cart) Total() float64 {
	var sum float64
	for _, it := range c.items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Customer identifies who is checking out.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Checkout builds the purchase request for the cart. The cart itself is left
// untouched; call Clear once the purchase has been accepted.
func (c *Cart) Checkout(who Customer, addr services.AddressInput) (services.PurchaseInput, error) {
	if len(c.items) == 0 {
		return services.PurchaseInput{}, ErrEmptyCart
	}
	return services.PurchaseInput{
		CustomerEmail:   strings.TrimSpace(who.Email),
		CustomerName:    strings.TrimSpace(who.Name),
		CustomerPhone:   strings.TrimSpace(who.Phone),
		Pharmacy:        c.pharmacy,
		Products:        c.Items(),
		TotalAmount:     c.Total(),
		ShippingAddress: &addr,
	}, nil
}

func (c *Cart) Clear() {
	c.items = nil
	c.pharmacy = ""
}
