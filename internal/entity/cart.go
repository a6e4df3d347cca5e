package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds the quantity of a cart or order line. It is the range of the
// INT quantity columns.
const MaxQuantity = math.MaxInt32

// CartItem is one product line in a cart. A cart holds at most one line per product.
type CartItem struct {
	ID          string          `json:"id"`
	CartID      string          `json:"-"`
	ProductID   string          `json:"product"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Cart is a user's pre-order collection. It is drained on checkout, never deleted.
type Cart struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item returns the line holding productID, if any.
func (c Cart) Item(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Recalculate refreshes line subtotals and the cart total from the live prices.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		total = total.Add(c.Items[i].Subtotal)
	}
	c.TotalPrice = total
}

// CheckoutLine is a cart item joined with the product state read inside the
// checkout transaction.
type CheckoutLine struct {
	CartItemID    string
	ProductID     string
	ProductName   string
	ShopID        string
	Price         decimal.Decimal
	Stock         int
	ProductStatus Status
	Quantity      int
}

// LineTotal is quantity times the current price.
func (l CheckoutLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
