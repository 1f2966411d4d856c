package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
)

const purchaseNotFound = "Purchase not found"

type AddressInput struct {
	Street     string `json:"street"     validate:"notblank"`
	City       string `json:"city"       validate:"notblank"`
	State      string `json:"state"      validate:"notblank"`
	PostalCode string `json:"postalCode" validate:"notblank"`
	Country    string `json:"country"`
}

type PurchaseInput struct {
	CustomerEmail   string                `json:"customerEmail"`
	CustomerName    string                `json:"customerName"`
	CustomerPhone   string                `json:"customerPhone"`
	Pharmacy        string                `json:"pharmacy"`
	Products        []models.PurchaseItem `json:"products"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingAddress *AddressInput         `json:"shippingAddress"`
}

type PurchaseOptions struct {
	// DefaultCountry fills an empty shipping country.
	DefaultCountry string
	// StrictTransitions rejects status changes that skip or reverse a step.
	StrictTransitions  bool
	StrictPharmacyRefs bool
}

type PurchaseService struct {
	purchases repositories.PurchaseRepository
	users     repositories.UserRepository
	events    *event.Bus
	opts      PurchaseOptions
}

func NewPurchaseService(purchases repositories.PurchaseRepository, users repositories.UserRepository,
	events *event.Bus, opts PurchaseOptions) *PurchaseService {
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = "USA"
	}
	return &PurchaseService{purchases: purchases, users: users, events: events, opts: opts}
}

// address validates a shipping address and applies the default country.
// Only street, city, state and postalCode are required.
func (s *PurchaseService) address(in *AddressInput) (models.Address, error) {
	const msg = "Missing required address fields"
	if in == nil {
		return models.Address{}, apperr.ValidationFields(msg, map[string]string{
			"shippingAddress": "The shippingAddress field is required.",
		})
	}

	a := AddressInput{
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
	if err := invalid(a, msg); err != nil {
		return models.Address{}, err
	}
	if a.Country == "" {
		a.Country = s.opts.DefaultCountry
	}
	return models.Address{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}, nil
}

// Create places an order. It always starts pending.
func (s *PurchaseService) Create(ctx context.Context, in PurchaseInput) (models.Purchase, error) {
	addr, err := s.address(in.ShippingAddress)
	if err != nil {
		return models.Purchase{}, err
	}
	if s.opts.StrictPharmacyRefs {
		if err := checkPharmacy(ctx, s.users, strings.TrimSpace(in.Pharmacy)); err != nil {
			return models.Purchase{}, err
		}
	}

	items := in.Products
	if items == nil {
		items = []models.PurchaseItem{}
	}
	p := models.Purchase{
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		Pharmacy:        strings.TrimSpace(in.Pharmacy),
		Products:        items,
		TotalAmount:     in.TotalAmount,
		ShippingAddress: addr,
		Status:          models.StatusPending,
	}
	if err := s.purchases.Create(ctx, &p); err != nil {
		return models.Purchase{}, apperr.Internal("Server Error", err)
	}

	metrics.PurchasesCreated.Inc()
	s.events.Fire(event.PurchaseCreated, p.Pharmacy, p)
	logger.WithCtx(ctx).Info("purchase created", "purchase_id", p.ID, "pharmacy", p.Pharmacy)
	return p, nil
}

// ListByPharmacy returns orders whose pharmacy equals name, newest first.
func (s *PurchaseService) ListByPharmacy(ctx context.Context, name string) ([]models.Purchase, error) {
	out, err := s.purchases.ListByPharmacy(ctx, name)
	if err != nil {
		return nil, apperr.Internal("Server Error", err)
	}
	return out, nil
}

func (s *PurchaseService) Get(ctx context.Context, id string) (models.Purchase, error) {
	if !models.ValidID(id) {
		return models.Purchase{}, apperr.NotFound(purchaseNotFound)
	}
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return models.Purchase{}, storeErr(err, purchaseNotFound)
	}
	return p, nil
}

// UpdateStatus moves an order to status. Unless strict transitions are on,
// any of the four statuses is accepted from any state.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id, status string) (models.Purchase, error) {
	next := models.PurchaseStatus(status)
	if !next.Valid() {
		return models.Purchase{}, apperr.ValidationFields("Invalid status value", map[string]string{
			"status": "The selected status is invalid. Allowed: pending, completed, shipped, delivered.",
		})
	}
	if !models.ValidID(id) {
		return models.Purchase{}, apperr.NotFound(purchaseNotFound)
	}

	var (
		p   models.Purchase
		err error
	)
	if s.opts.StrictTransitions {
		p, err = s.transition(ctx, id, next)
	} else {
		p, err = s.purchases.UpdateStatus(ctx, id, next)
	}
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return models.Purchase{}, err
		}
		return models.Purchase{}, storeErr(err, purchaseNotFound)
	}

	s.events.Fire(event.PurchaseStatusChanged, p.Pharmacy, p)
	return p, nil
}

// transition applies next only if it is legal from the current status and
// the status has not moved in between.
func (s *PurchaseService) transition(ctx context.Context, id string, next models.PurchaseStatus) (models.Purchase, error) {
	cur, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return models.Purchase{}, err
	}
	if !cur.Status.CanTransition(next) {
		return models.Purchase{}, apperr.ValidationFields(
			fmt.Sprintf("Cannot change status from %s to %s", cur.Status, next),
			map[string]string{"status": fmt.Sprintf("The status may only move from %s to the next step.", cur.Status)},
		)
	}

	p, err := s.purchases.UpdateStatus(ctx, id, next, cur.Status)
	if errors.Is(err, repositories.ErrStatusChanged) {
		return models.Purchase{}, apperr.Conflict("Purchase status changed, reload and try again")
	}
	return p, err
}

// UpdateAddress replaces the shipping address, with the same rules as Create.
func (s *PurchaseService) UpdateAddress(ctx context.Context, id string, in *AddressInput) (models.Purchase, error) {
	addr, err := s.address(in)
	if err != nil {
		return models.Purchase{}, err
	}
	if !models.ValidID(id) {
		return models.Purchase{}, apperr.NotFound(purchaseNotFound)
	}

	p, err := s.purchases.UpdateAddress(ctx, id, addr)
	if err != nil {
		return models.Purchase{}, storeErr(err, purchaseNotFound)
	}
	return p, nil
}
