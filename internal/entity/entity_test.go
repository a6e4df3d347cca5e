package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range entity.OrderStatuses {
		got, err := entity.ParseOrderStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"", "Pending", "lost", " shipped"} {
		_, err := entity.ParseOrderStatus(bad)
		assert.ErrorIs(t, err, entity.ErrInvalidStatus, bad)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, entity.StatusActive.Valid())
	assert.True(t, entity.StatusInactive.Valid())
	assert.True(t, entity.StatusDeleted.Valid())
	assert.False(t, entity.Status("archived").Valid())
	assert.False(t, entity.Status("").Valid())
}

func TestCartRecalculate(t *testing.T) {
	c := entity.Cart{Items: []entity.CartItem{
		{ProductID: "a", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: "b", Price: decimal.RequireFromString("15.50"), Quantity: 1},
	}}
	c.Recalculate()

	assert.Equal(t, "20.00", c.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "15.50", c.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "35.50", c.TotalPrice.StringFixed(2))

	it, ok := c.Item("b")
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)
	_, ok = c.Item("z")
	assert.False(t, ok)
	assert.False(t, c.IsEmpty())

	var empty entity.Cart
	empty.Recalculate()
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.TotalPrice.IsZero())
}

func TestLineTotals(t *testing.T) {
	line := entity.CheckoutLine{Price: decimal.RequireFromString("0.10"), Quantity: 3}
	assert.Equal(t, "0.30", line.LineTotal().StringFixed(2))

	d := entity.OrderDetail{Price: decimal.RequireFromString("19.99"), Quantity: 4}
	assert.Equal(t, "79.96", d.LineTotal().StringFixed(2))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, entity.ErrInsufficientStock, entity.ErrConflict)
	assert.ErrorIs(t, entity.ErrProductUnavailable, entity.ErrConflict)

	err := entity.Invalid("price %s", "-1")
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.Contains(t, err.Error(), "price -1")

	err = entity.NotFound("product", "p1")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	assert.Contains(t, err.Error(), `product "p1"`)
}

func TestNewOrderPlaced(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	res := entity.CheckoutResult{
		OrderID:     "o1",
		TotalAmount: decimal.NewFromInt(35),
		ShopOrders: []entity.ShopOrder{
			{ID: "so1", ShopID: "s1", ShopTotal: decimal.NewFromInt(20), Items: make([]entity.OrderDetail, 2)},
			{ID: "so2", ShopID: "s2", ShopTotal: decimal.NewFromInt(15), Items: make([]entity.OrderDetail, 1)},
		},
	}

	ev := entity.NewOrderPlaced("u1", res, at)
	assert.Equal(t, "OrderPlaced", ev.EventType())
	assert.Equal(t, "o1", ev.OrderID)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, at, ev.PlacedAt)
	require.Len(t, ev.ShopOrders, 2)
	assert.Equal(t, entity.ShopOrderPlaced{ShopOrderID: "so1", ShopID: "s1", ShopTotal: decimal.NewFromInt(20), Items: 2}, ev.ShopOrders[0])
	assert.Equal(t, 1, ev.ShopOrders[1].Items)
}

func TestIdentityAnonymous(t *testing.T) {
	assert.True(t, entity.Identity{}.Anonymous())
	assert.False(t, entity.Identity{UserID: "u"}.Anonymous())
}
