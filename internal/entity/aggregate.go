package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topics the marketplace publishes to.
const (
	TopicOrderPlaced       = "orders.placed"
	TopicShopOrderStatuses = "vendor-orders.status"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// ShopOrderPlaced summarises one shop's part of a placed order.
type ShopOrderPlaced struct {
	ShopOrderID string          `json:"shop_order_id"`
	ShopID      string          `json:"shop_id"`
	ShopTotal   decimal.Decimal `json:"shop_total"`
	Items       int             `json:"items"`
}

// OrderPlaced is emitted after a checkout commits.
type OrderPlaced struct {
	OrderID     string            `json:"order_id"`
	UserID      string            `json:"user_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ShopOrders  []ShopOrderPlaced `json:"shop_orders"`
	PlacedAt    time.Time         `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// NewOrderPlaced builds the event for a checkout result.
func NewOrderPlaced(userID string, res CheckoutResult, at time.Time) OrderPlaced {
	shops := make([]ShopOrderPlaced, 0, len(res.ShopOrders))
	for _, so := range res.ShopOrders {
		shops = append(shops, ShopOrderPlaced{
			ShopOrderID: so.ID,
			ShopID:      so.ShopID,
			ShopTotal:   so.ShopTotal,
			Items:       len(so.Items),
		})
	}
	return OrderPlaced{
		OrderID:     res.OrderID,
		UserID:      userID,
		TotalAmount: res.TotalAmount,
		ShopOrders:  shops,
		PlacedAt:    at,
	}
}

// ShopOrderStatusChanged is emitted when a manager moves a shop order to a new status.
type ShopOrderStatusChanged struct {
	ShopOrderID string      `json:"shop_order_id"`
	OrderID     string      `json:"order_id"`
	ShopID      string      `json:"shop_id"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	ChangedAt   time.Time   `json:"changed_at"`
}

func (e ShopOrderStatusChanged) EventType() string { return "ShopOrderStatusChanged" }
