package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesLines(t *testing.T) {
	f := newFixture(t)
	f.product(t, "x", "shop-a", "2.50", 10)

	f.addToCart(t, customer, "x", 1)
	cart := f.addToCart(t, customer, "x", 2)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "7.50", cart.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "7.50", cart.TotalPrice.StringFixed(2))
	assert.Equal(t, "Product x", cart.Items[0].ProductName)
}

func TestCart_AddValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "x", "shop-a", "2.50", 10)

	tests := []struct {
		name string
		id   entity.Identity
		in   service.AddItemInput
		want error
	}{
		{"anonymous", anon, service.AddItemInput{ProductID: "x", Quantity: ptr(1)}, entity.ErrUnauthenticated},
		{"missing product", customer, service.AddItemInput{Quantity: ptr(1)}, entity.ErrValidation},
		{"missing quantity", customer, service.AddItemInput{ProductID: "x"}, entity.ErrValidation},
		{"zero quantity", customer, service.AddItemInput{ProductID: "x", Quantity: ptr(0)}, entity.ErrValidation},
		{"quantity above limit", customer, service.AddItemInput{ProductID: "x", Quantity: ptr(entity.MaxQuantity + 1)}, entity.ErrValidation},
		{"huge quantity", customer, service.AddItemInput{ProductID: "x", Quantity: ptr(math.MaxInt)}, entity.ErrValidation},
		{"unknown product", customer, service.AddItemInput{ProductID: "nope", Quantity: ptr(1)}, entity.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.carts.AddItem(ctx, tt.id, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCart_MergedQuantityCannotOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "x", "shop-a", "1.00", 10)

	f.addToCart(t, customer, "x", entity.MaxQuantity)
	_, err := f.carts.AddItem(ctx, customer, service.AddItemInput{ProductID: "x", Quantity: ptr(2)})
	require.ErrorIs(t, err, entity.ErrValidation)

	cart, err := f.carts.GetCart(ctx, customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, entity.MaxQuantity, cart.Items[0].Quantity)

	res, err := f.checkout.Checkout(ctx, customer)
	require.NoError(t, err)
	assert.True(t, res.TotalAmount.IsPositive())
	assert.Equal(t, "2147483647.00", res.TotalAmount.StringFixed(2))
}

func TestCart_Remove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "x", "shop-a", "1.00", 10)
	f.product(t, "y", "shop-b", "1.00", 10)
	f.addToCart(t, customer, "x", 1)
	f.addToCart(t, customer, "y", 1)

	cart, err := f.carts.RemoveItem(ctx, customer, "x")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "y", cart.Items[0].ProductID)

	_, err = f.carts.RemoveItem(ctx, customer, "x")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = f.carts.RemoveItem(ctx, customer, "")
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestCart_LivePrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "x", "shop-a", "1.00", 10)
	f.addToCart(t, customer, "x", 2)

	_, err := f.catalog.PatchProduct(ctx, alice, p.ID, service.ProductInput{Price: ptr(p.Price.Add(p.Price))})
	require.NoError(t, err)

	cart, err := f.carts.GetCart(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "4.00", cart.TotalPrice.StringFixed(2))
}
