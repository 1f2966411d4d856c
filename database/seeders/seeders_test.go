package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/database/seeders"
	"github.com/shashiranjanraj/medcart/pkg/auth"
)

func TestRunAllIsIdempotent(t *testing.T) {
	config.Set("BCRYPT_COST", "4")
	ctx := context.Background()
	repos := repositories.NewMemory()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, repos, &out))
	require.NoError(t, seeders.RunAll(ctx, repos, &out))
	assert.Contains(t, out.String(), "Running seeder: pharmacies")

	pharmacies, err := repos.Users.ListByRole(ctx, models.RolePharmacy)
	require.NoError(t, err)
	assert.Len(t, pharmacies, 2)

	products, err := repos.Products.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 4)

	u, err := repos.Users.FindByEmail(ctx, "citypharm@example.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.Password, seeders.DemoPassword))
}
