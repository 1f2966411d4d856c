package event_test

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/workerpool"
)

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	return event.Event{}
}

func TestFireDeliversToEveryListener(t *testing.T) {
	pool := workerpool.New(2, 0)
	defer pool.Shutdown()
	bus := event.New(pool)

	first := make(chan event.Event, 1)
	second := make(chan event.Event, 1)
	bus.Listen(event.PurchaseCreated, func(e event.Event) { first <- e })
	bus.Listen(event.PurchaseCreated, func(e event.Event) { second <- e })

	bus.Fire(event.PurchaseCreated, "CityPharm", map[string]string{"id": "1"})

	e := receive(t, first)
	assert.Equal(t, event.PurchaseCreated, e.Name)
	assert.Equal(t, "CityPharm", e.Pharmacy)
	assert.False(t, e.At.IsZero())
	assert.Equal(t, event.PurchaseCreated, receive(t, second).Name)
}

func TestFireSkipsListenersOfOtherEvents(t *testing.T) {
	pool := workerpool.New(1, 0)
	bus := event.New(pool)

	called := make(chan struct{}, 1)
	bus.Listen(event.PurchaseCreated, func(event.Event) { called <- struct{}{} })
	bus.Fire(event.PrescriptionUploaded, "p", nil)
	pool.Shutdown()

	assert.Empty(t, called)
}

func TestFireSamplesQueueDepth(t *testing.T) {
	pool := workerpool.New(1, 4)
	defer pool.Shutdown()
	bus := event.New(pool)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	bus.Listen(event.PurchaseCreated, func(event.Event) {})
	bus.Fire(event.PurchaseCreated, "CityPharm", nil)

	var m dto.Metric
	require.NoError(t, metrics.EventQueueDepth.Write(&m))
	assert.Equal(t, float64(1), m.GetGauge().GetValue())
	close(release)
}

func TestNilBusAndClosedPool(t *testing.T) {
	var bus *event.Bus
	require.NotPanics(t, func() { bus.Fire(event.PurchaseCreated, "p", nil) })

	pool := workerpool.New(1, 0)
	pool.Shutdown()
	closed := event.New(pool)
	closed.Listen(event.PurchaseCreated, func(event.Event) {})
	require.NotPanics(t, func() { closed.Fire(event.PurchaseCreated, "p", nil) })
}
