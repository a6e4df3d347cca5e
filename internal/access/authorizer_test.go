package access_test

import (
	"context"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *access.Authorizer {
	t.Helper()
	ctx := context.Background()
	repos := memory.New().Repositories()

	for _, s := range []entity.Shop{
		{ID: "shop-a", Name: "Shop A", Slug: "shop-a", Status: entity.StatusActive},
		{ID: "shop-b", Name: "Shop B", Slug: "shop-b", Status: entity.StatusActive},
	} {
		s := s
		require.NoError(t, repos.Shops.Create(ctx, &s))
	}
	require.NoError(t, repos.Managers.Create(ctx, &entity.Manager{UserID: "alice", ShopID: "shop-a"}))
	return access.NewAuthorizer(repos.Managers)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	az := setup(t)

	alice := entity.Identity{UserID: "alice"}
	bob := entity.Identity{UserID: "bob"}
	anon := entity.Identity{}

	tests := []struct {
		name   string
		id     entity.Identity
		action access.Action
		res    access.Resource
		want   bool
	}{
		{"anonymous reads products", anon, access.ActionRead, access.Resource{Kind: access.KindProduct, ShopID: "shop-a"}, true},
		{"anonymous reads categories", anon, access.ActionRead, access.Resource{Kind: access.KindCategory}, true},
		{"manager updates own product", alice, access.ActionUpdate, access.Resource{Kind: access.KindProduct, ShopID: "shop-a"}, true},
		{"manager updates foreign product", alice, access.ActionUpdate, access.Resource{Kind: access.KindProduct, ShopID: "shop-b"}, false},
		{"manager deletes own shop", alice, access.ActionDelete, access.Resource{Kind: access.KindShop, ShopID: "shop-a"}, true},
		{"unbound user creates product", bob, access.ActionCreate, access.Resource{Kind: access.KindProduct, ShopID: "shop-a"}, false},
		{"manager reads own shop order", alice, access.ActionRead, access.Resource{Kind: access.KindShopOrder, ShopID: "shop-a"}, true},
		{"manager reads foreign shop order", alice, access.ActionRead, access.Resource{Kind: access.KindShopOrder, ShopID: "shop-b"}, false},
		{"anonymous reads shop order", anon, access.ActionRead, access.Resource{Kind: access.KindShopOrder, ShopID: "shop-a"}, false},
		{"manager writes brands", alice, access.ActionCreate, access.Resource{Kind: access.KindBrand}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := az.Authorize(ctx, tt.id, tt.action, tt.res)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinding(t *testing.T) {
	ctx := context.Background()
	az := setup(t)

	m, ok, err := az.Binding(ctx, entity.Identity{UserID: "alice"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shop-a", m.ShopID)

	_, ok, err = az.Binding(ctx, entity.Identity{UserID: "bob"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = az.Binding(ctx, entity.Identity{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	az := setup(t)
	res := access.Resource{Kind: access.KindProduct, ShopID: "shop-a"}

	assert.NoError(t, az.Require(ctx, entity.Identity{UserID: "alice"}, access.ActionUpdate, res))
	assert.ErrorIs(t, az.Require(ctx, entity.Identity{UserID: "bob"}, access.ActionUpdate, res), entity.ErrPermission)
	assert.ErrorIs(t, az.Require(ctx, entity.Identity{}, access.ActionUpdate, res), entity.ErrUnauthenticated)
}
