package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of orders, shop orders and deliveries.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// OrderStatuses is the complete set of legal order statuses. The postgres schema
// derives its CHECK constraints from it.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// ParseOrderStatus validates s against OrderStatuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order is the customer-facing aggregate of one checkout.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	ShopOrders  []ShopOrder     `json:"shop_orders"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ShopOrder is the part of an Order fulfilled by a single shop.
type ShopOrder struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order"`
	ShopID    string          `json:"shop"`
	ShopName  string          `json:"shop_name"`
	Status    OrderStatus     `json:"status"`
	ShopTotal decimal.Decimal `json:"shop_total"`
	Delivery  *DeliveryInfo   `json:"delivery_info"`
	Items     []OrderDetail   `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderDetail is a line item. Price is the snapshot taken at checkout.
type OrderDetail struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"-"`
	ShopOrderID string          `json:"-"`
	ProductID   string          `json:"product"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// LineTotal is quantity times the snapshot price.
func (d OrderDetail) LineTotal() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// DeliveryInfo tracks the shipment of a ShopOrder.
type DeliveryInfo struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"tracking_number"`
	Carrier        string      `json:"carrier"`
	ShippingDate   *time.Time  `json:"shipping_date"`
	DeliveryDate   *time.Time  `json:"delivery_date"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CheckoutResult describes the records created by a successful checkout.
type CheckoutResult struct {
	OrderID     string
	TotalAmount decimal.Decimal
	ShopOrders  []ShopOrder
}
