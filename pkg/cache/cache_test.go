package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/medcart/pkg/cache"
)

func TestNilStoreIsAlwaysAMiss(t *testing.T) {
	var s *cache.Store
	ctx := context.Background()

	s.Set(ctx, "products:CityPharm", []string{"a"})

	var out []string
	assert.False(t, s.Get(ctx, "products:CityPharm", &out))
	assert.Nil(t, out)

	key, ok := s.Key(ctx, "products", "CityPharm")
	assert.False(t, ok, "a disabled cache hands out no keys")
	assert.Empty(t, key)

	s.Bump(ctx, "products")
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}
