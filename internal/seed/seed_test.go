package seed

import (
	"context"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefault(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repositories()

	d, err := LoadFile("")
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, repos, d))

	shops, err := repos.Shops.List(ctx)
	require.NoError(t, err)
	assert.Len(t, shops, 2)

	m, ok, err := repos.Managers.FindByUser(ctx, "manager-harbor")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5f0c7a1e-1d2b-4c3a-9e8f-000000000002", m.ShopID)

	products, err := repos.Products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 4)

	skillet, err := repos.Products.Get(ctx, "c1a2b3d4-0000-4000-8000-000000000003")
	require.NoError(t, err)
	assert.Equal(t, "45.00", skillet.Price.StringFixed(2))
	assert.Equal(t, "Harbor Kitchen Supply", skillet.ShopName)
	require.Len(t, skillet.Images, 2)
	assert.True(t, skillet.Images[0].IsFeature)

	// A second run leaves the populated store alone.
	require.NoError(t, Apply(ctx, repos, d))
	products, err = repos.Products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestParseRejectsBadPrice(t *testing.T) {
	d, err := Parse([]byte(`
shops:
  - id: s1
    name: S
    slug: s
products:
  - id: p1
    shop: s1
    name: Thing
    price: "twelve"
`))
	require.NoError(t, err)

	err = Apply(context.Background(), memory.New().Repositories(), d)
	assert.ErrorContains(t, err, "invalid price")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}
