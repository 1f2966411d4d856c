package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListIncludesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	response.List(rec, []string{"a", "b"}, 2)

	body := decode(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}

func TestEmptyListStillRendersData(t *testing.T) {
	rec := httptest.NewRecorder()
	response.List(rec, []string{}, 0)

	body := decode(t, rec)
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, float64(0), body["count"])
}

func TestFromErrorUsesKind(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromError(rec, apperr.OutOfStock("Product out of stock"))

	body := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Product out of stock", body["message"])
	assert.NotContains(t, body, "data")
}

func TestFromErrorInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromError(rec, errors.New("socket closed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "socket closed", decode(t, rec)["message"])
}

func TestFromErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromError(rec, apperr.ValidationFields("The name field is required.",
		map[string]string{"name": "The name field is required."}))

	body := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The name field is required.", body["message"])
	assert.Equal(t, map[string]any{"name": "The name field is required."}, body["errors"])
}
