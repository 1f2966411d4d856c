package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/medcart/pkg/validate"
)

type addressInput struct {
	Street     string `json:"street"     validate:"notblank"`
	City       string `json:"city"       validate:"notblank"`
	PostalCode string `json:"postalCode" validate:"notblank"`
}

type signupInput struct {
	Name     string        `json:"name"     validate:"notblank,max=100"`
	Email    string        `json:"email"    validate:"required,email"`
	Password string        `json:"password" validate:"required,min=6"`
	Role     string        `json:"role"     validate:"oneof=customer pharmacy admin"`
	Price    *float64      `json:"price"    validate:"required,gte=0"`
	Address  *addressInput `json:"address"  validate:"omitempty"`
}

func price(f float64) *float64 { return &f }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret1",
		Role:     "pharmacy",
		Price:    price(0),
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})

	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The email field is required.", errs["email"])
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "price")
}

func TestNotBlankRejectsWhitespace(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "   ", Email: "a@b.co", Password: "secret1", Role: "admin", Price: price(1)})

	assert.Equal(t, map[string]string{"name": "The name field is required."}, errs)
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.Equal(t, "The email must be a valid email address.", validate.Struct(in{Email: "not-an-email"})["email"])
	assert.Empty(t, validate.Struct(in{Email: "valid@example.com"}))
}

func TestOneOfRule(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "secret1", Role: "root", Price: price(1)})

	assert.Equal(t, "The selected role is invalid. Allowed: customer, pharmacy, admin.", errs["role"])
}

func TestNumericBounds(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "secret1", Role: "admin", Price: price(-1)})

	assert.Equal(t, "The price must be greater than or equal to 0.", errs["price"])
}

func TestStringLength(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "abc", Role: "admin", Price: price(1)})

	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
}

func TestNestedFieldsUseDottedPath(t *testing.T) {
	type order struct {
		ShippingAddress addressInput `json:"shippingAddress"`
	}
	errs := validate.Struct(order{ShippingAddress: addressInput{Street: "1 Main"}})

	assert.Equal(t, "The shippingAddress.city field is required.", errs["shippingAddress.city"])
	assert.Contains(t, errs, "shippingAddress.postalCode")
	assert.NotContains(t, errs, "shippingAddress.street")
}

func TestNonStructIsIgnored(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
}

func TestFirstIsStable(t *testing.T) {
	errs := map[string]string{"b": "second", "a": "first"}

	assert.Equal(t, "first", validate.First(errs))
	assert.Equal(t, "", validate.First(nil))
}
