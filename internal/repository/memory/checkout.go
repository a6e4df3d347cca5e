package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactor struct{ s *Store }

// WithinCheckout holds the store's write lock for the whole transaction, so
// concurrent checkouts observe each other's results in full or not at all.
func (t *transactor) WithinCheckout(ctx context.Context, fn func(ctx context.Context, tx repository.CheckoutTx) error) error {
	return t.s.write(func(st *state) error {
		return fn(ctx, &checkoutTx{st: st, now: t.s.now})
	})
}

type checkoutTx struct {
	st  *state
	now func() time.Time
}

func (tx *checkoutTx) CartLines(ctx context.Context, userID string) (string, []entity.CheckoutLine, error) {
	cart, ok := tx.st.carts[userID]
	if !ok {
		return "", nil, nil
	}

	rows := tx.st.cartRows(cart.ID)
	lines := make([]entity.CheckoutLine, 0, len(rows))
	for _, row := range rows {
		p, ok := tx.st.products[row.ProductID]
		if !ok {
			return "", nil, fmt.Errorf("%w: product %q vanished", entity.ErrConflict, row.ProductID)
		}
		lines = append(lines, entity.CheckoutLine{
			CartItemID:    row.ID,
			ProductID:     p.ID,
			ProductName:   p.Name,
			ShopID:        p.ShopID,
			Price:         p.Price,
			Stock:         p.Stock,
			ProductStatus: p.Status,
			Quantity:      row.Quantity,
		})
	}
	return cart.ID, lines, nil
}

func (tx *checkoutTx) CreateOrder(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := tx.now()
	o.CreatedAt, o.UpdatedAt = now, now
	row := *o
	row.ShopOrders = nil
	tx.st.orders[o.ID] = orderRow{Order: row, seq: tx.st.next()}
	return nil
}

func (tx *checkoutTx) CreateShopOrder(ctx context.Context, so *entity.ShopOrder) error {
	if _, ok := tx.st.orders[so.OrderID]; !ok {
		return fmt.Errorf("%w: order %q does not exist", entity.ErrConflict, so.OrderID)
	}
	shop, ok := tx.st.shops[so.ShopID]
	if !ok {
		return fmt.Errorf("%w: shop %q does not exist", entity.ErrConflict, so.ShopID)
	}
	if so.ID == "" {
		so.ID = uuid.NewString()
	}
	now := tx.now()
	so.CreatedAt, so.UpdatedAt = now, now
	so.ShopName = shop.Name
	row := *so
	row.Items = nil
	row.Delivery = nil
	tx.st.shopOrders[so.ID] = shopOrderRow{ShopOrder: row, seq: tx.st.next()}
	return nil
}

func (tx *checkoutTx) CreateOrderDetail(ctx context.Context, d *entity.OrderDetail) error {
	if _, ok := tx.st.orders[d.OrderID]; !ok {
		return fmt.Errorf("%w: order %q does not exist", entity.ErrConflict, d.OrderID)
	}
	if _, ok := tx.st.shopOrders[d.ShopOrderID]; !ok {
		return fmt.Errorf("%w: shop order %q does not exist", entity.ErrConflict, d.ShopOrderID)
	}
	if _, ok := tx.st.products[d.ProductID]; !ok {
		return fmt.Errorf("%w: product %q does not exist", entity.ErrConflict, d.ProductID)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	tx.st.details[d.ID] = detailRow{OrderDetail: *d, seq: tx.st.next()}
	return nil
}

func (tx *checkoutTx) SetShopOrderTotal(ctx context.Context, shopOrderID string, total decimal.Decimal) error {
	row, ok := tx.st.shopOrders[shopOrderID]
	if !ok {
		return entity.NotFound("shop order", shopOrderID)
	}
	row.ShopTotal = total
	tx.st.shopOrders[shopOrderID] = row
	return nil
}

func (tx *checkoutTx) SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	row, ok := tx.st.orders[orderID]
	if !ok {
		return entity.NotFound("order", orderID)
	}
	row.TotalAmount = total
	tx.st.orders[orderID] = row
	return nil
}

func (tx *checkoutTx) ReserveStock(ctx context.Context, productID string, quantity int) (bool, error) {
	row, ok := tx.st.products[productID]
	if !ok {
		return false, entity.NotFound("product", productID)
	}
	if row.Stock < quantity {
		return false, nil
	}
	row.Stock -= quantity
	tx.st.products[productID] = row
	return true, nil
}

func (tx *checkoutTx) ClearCart(ctx context.Context, cartID string) error {
	for id, it := range tx.st.cartItems {
		if it.CartID == cartID {
			delete(tx.st.cartItems, id)
		}
	}
	return tx.st.touchCart(cartID, tx.now())
}
