package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/medcart/app/models"
)

// memoryStore keeps every collection in maps behind one lock. It backs
// DB_DRIVER=memory and the service tests.
type memoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	products      map[string]models.Product
	purchases     map[string]models.Purchase
	prescriptions map[string]models.Prescription
}

// NewMemory returns repositories backed by process memory.
func NewMemory() Repositories {
	s := &memoryStore{
		users:         make(map[string]models.User),
		products:      make(map[string]models.Product),
		purchases:     make(map[string]models.Purchase),
		prescriptions: make(map[string]models.Prescription),
	}
	return Repositories{
		Users:         memoryUsers{s},
		Products:      memoryProducts{s},
		Purchases:     memoryPurchases{s},
		Prescriptions: memoryPrescriptions{s},
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = models.NewID()
	}
}

func touch(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// newestFirst orders by creation time, then id, both descending.
func newestFirst(created func(i int) time.Time, id func(i int) string) func(i, j int) bool {
	return func(i, j int) bool {
		ci, cj := created(i), created(j)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(i) > id(j)
	}
}

// ─── Users ───────────────────────────────────────────────────────────────────

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	ensureID(&u.ID)
	touch(&u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r memoryUsers) ListByRole(_ context.Context, role string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryUsers) PharmacyExists(_ context.Context, ref string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Role == models.RolePharmacy && (u.Name == ref || u.Email == strings.ToLower(ref)) {
			return true, nil
		}
	}
	return false, nil
}

// ─── Products ────────────────────────────────────────────────────────────────

type memoryProducts struct{ s *memoryStore }

func (r memoryProducts) List(_ context.Context, pharmacy string) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if pharmacy == "" || p.Pharmacy == pharmacy {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memoryProducts) Create(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	r.s.products[p.ID] = *p
	return nil
}

func (r memoryProducts) FindByID(_ context.Context, id string) (models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (r memoryProducts) Update(_ context.Context, id string, patch ProductPatch) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	return p, nil
}

func (r memoryProducts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r memoryProducts) DecrementStock(_ context.Context, id string) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if p.Stock <= 0 {
		return models.Product{}, ErrOutOfStock
	}
	p.Stock--
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	return p, nil
}

// ─── Purchases ───────────────────────────────────────────────────────────────

type memoryPurchases struct{ s *memoryStore }

func (r memoryPurchases) Create(_ context.Context, p *models.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	items := make([]models.PurchaseItem, len(p.Products))
	copy(items, p.Products)
	p.Products = items
	r.s.purchases[p.ID] = *p
	return nil
}

func (r memoryPurchases) FindByID(_ context.Context, id string) (models.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.purchases[id]
	if !ok {
		return models.Purchase{}, ErrNotFound
	}
	return p, nil
}

func (r memoryPurchases) ListByPharmacy(_ context.Context, name string) ([]models.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Purchase, 0)
	for _, p := range r.s.purchases {
		if p.Pharmacy == name {
			out = append(out, p)
		}
	}
	sort.Slice(out, newestFirst(
		func(i int) time.Time { return out[i].CreatedAt },
		func(i int) string { return out[i].ID }))
	return out, nil
}

func (r memoryPurchases) UpdateStatus(_ context.Context, id string, next models.PurchaseStatus, from ...models.PurchaseStatus) (models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.purchases[id]
	if !ok {
		return models.Purchase{}, ErrNotFound
	}
	if len(from) > 0 && !statusIn(p.Status, from) {
		return models.Purchase{}, ErrStatusChanged
	}
	p.Status = next
	p.UpdatedAt = time.Now().UTC()
	r.s.purchases[id] = p
	return p, nil
}

func (r memoryPurchases) UpdateAddress(_ context.Context, id string, addr models.Address) (models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.purchases[id]
	if !ok {
		return models.Purchase{}, ErrNotFound
	}
	p.ShippingAddress = addr
	p.UpdatedAt = time.Now().UTC()
	r.s.purchases[id] = p
	return p, nil
}

// ─── Prescriptions ───────────────────────────────────────────────────────────

type memoryPrescriptions struct{ s *memoryStore }

func (r memoryPrescriptions) Create(_ context.Context, p *models.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	stored := *p
	stored.FileURL = ""
	r.s.prescriptions[p.ID] = stored
	return nil
}

func (r memoryPrescriptions) SearchByPharmacy(_ context.Context, needle string) ([]models.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Prescription, 0)
	for _, p := range r.s.prescriptions {
		if containsFold(p.Pharmacy, needle) {
			out = append(out, p)
		}
	}
	sort.Slice(out, newestFirst(
		func(i int) time.Time { return out[i].CreatedAt },
		func(i int) string { return out[i].ID }))
	return out, nil
}
