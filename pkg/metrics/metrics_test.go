package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/pkg/metrics"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/purchases/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := value(t, metrics.RequestTotal.WithLabelValues("GET", "/api/purchases/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/purchases/65a1f0c2e4b0a1b2c3d4e5f6", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/purchases/other", nil))

	after := value(t, metrics.RequestTotal.WithLabelValues("GET", "/api/purchases/{id}", "404"))
	assert.Equal(t, before+2, after)
}

func TestRecordStockPurchase(t *testing.T) {
	before := value(t, metrics.StockPurchases.WithLabelValues("out_of_stock"))
	metrics.RecordStockPurchase("out_of_stock")
	assert.Equal(t, before+1, value(t, metrics.StockPurchases.WithLabelValues("out_of_stock")))
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	metrics.PurchasesCreated.Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "medcart_purchases_created_total")
	assert.Contains(t, string(body), "go_goroutines")
}
