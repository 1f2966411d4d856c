package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/medcart/pkg/apperr"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Conflict("dup"), http.StatusBadRequest},
		{apperr.Unauthorized("Invalid credentials"), http.StatusBadRequest},
		{apperr.OutOfStock("Product out of stock"), http.StatusBadRequest},
		{apperr.NotFound("Product not found"), http.StatusNotFound},
		{apperr.Internal("boom", errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperr.Status(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("buy: %w", apperr.OutOfStock("Product out of stock"))

	assert.True(t, apperr.Is(err, apperr.KindOutOfStock))
	assert.False(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, apperr.Is(nil, apperr.KindInternal))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	err := apperr.Internal("create purchase", errors.New("connection refused"))

	assert.Equal(t, "connection refused", apperr.Message(err, true))
	assert.Equal(t, "Server Error", apperr.Message(err, false))
	assert.Equal(t, "Server Error", apperr.Message(errors.New("raw"), false))
	assert.Equal(t, "Purchase not found", apperr.Message(apperr.NotFound("Purchase not found"), false))
}

func TestFields(t *testing.T) {
	err := apperr.ValidationFields("Validation failed", map[string]string{"email": "The email field is required."})

	assert.Equal(t, "The email field is required.", apperr.Fields(err)["email"])
	assert.Nil(t, apperr.Fields(apperr.NotFound("x")))
}
