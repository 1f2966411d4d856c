// Package event dispatches domain events to listeners on a bounded worker
// pool. Publishing never blocks a request: when the pool is saturated the
// event is dropped and logged.
package event

import (
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/workerpool"
)

// Names of the events the services emit.
const (
	PurchaseCreated       = "purchase.created"
	PurchaseStatusChanged = "purchase.status_changed"
	PrescriptionUploaded  = "prescription.uploaded"
	ProductStockChanged   = "product.stock_changed"
)

// Event is one occurrence. Pharmacy routes it to the matching realtime room.
type Event struct {
	Name     string      `json:"type"`
	Pharmacy string      `json:"-"`
	Data     interface{} `json:"data"`
	At       time.Time   `json:"at"`
}

// Handler receives a published event.
type Handler func(Event)

// Bus fans events out to listeners. A nil *Bus discards everything, so
// services can be built without one.
type Bus struct {
	pool *workerpool.Pool

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New returns a Bus that runs handlers on pool.
func New(pool *workerpool.Pool) *Bus {
	return &Bus{pool: pool, handlers: map[string][]Handler{}}
}

// Listen registers h for one event name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Fire publishes an event asynchronously.
func (b *Bus) Fire(name, pharmacy string, data interface{}) {
	if b == nil {
		return
	}
	e := Event{Name: name, Pharmacy: pharmacy, Data: data, At: time.Now().UTC()}

	for _, h := range b.listeners(name) {
		h := h
		if err := b.pool.Submit(func() { h(e) }); err != nil {
			if errors.Is(err, workerpool.ErrPoolClosed) {
				return
			}
			metrics.EventsDropped.WithLabelValues(name).Inc()
			logger.Warn("event: dropped", "event", name, "error", err)
		}
	}
	metrics.EventQueueDepth.Set(float64(b.pool.Pending()))
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}
