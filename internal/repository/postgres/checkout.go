package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactor struct {
	db *sql.DB
}

func (t *transactor) WithinCheckout(ctx context.Context, fn func(ctx context.Context, tx repository.CheckoutTx) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &checkoutTx{tx: tx}); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

type checkoutTx struct {
	tx *sql.Tx
}

func (c *checkoutTx) CartLines(ctx context.Context, userID string) (string, []entity.CheckoutLine, error) {
	var cartID string
	err := c.tx.QueryRowContext(ctx, "SELECT id FROM carts WHERE user_id = $1 FOR UPDATE", userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to lock cart: %w", mapError(err))
	}

	rows, err := c.tx.QueryContext(ctx, `
		SELECT ci.id, p.id, p.name, p.shop_id, p.price, p.stock, p.status, ci.quantity
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
		FOR UPDATE OF ci`, cartID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to lock cart items: %w", mapError(err))
	}
	defer rows.Close()

	var lines []entity.CheckoutLine
	for rows.Next() {
		var l entity.CheckoutLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.ProductName, &l.ShopID, &l.Price, &l.Stock, &l.ProductStatus, &l.Quantity); err != nil {
			return "", nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return cartID, lines, rows.Err()
}

func (c *checkoutTx) CreateOrder(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := c.tx.ExecContext(ctx,
		"INSERT INTO orders (id, user_id, total_amount, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		o.ID, o.UserID, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", mapError(err))
	}
	return nil
}

func (c *checkoutTx) CreateShopOrder(ctx context.Context, so *entity.ShopOrder) error {
	if so.ID == "" {
		so.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	so.CreatedAt, so.UpdatedAt = now, now
	err := c.tx.QueryRowContext(ctx, `
		INSERT INTO shop_orders (id, order_id, shop_id, status, shop_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING (SELECT name FROM shops WHERE id = $3)`,
		so.ID, so.OrderID, so.ShopID, so.Status, so.ShopTotal, so.CreatedAt, so.UpdatedAt,
	).Scan(&so.ShopName)
	if err != nil {
		return fmt.Errorf("failed to insert shop order: %w", mapError(err))
	}
	return nil
}

func (c *checkoutTx) CreateOrderDetail(ctx context.Context, d *entity.OrderDetail) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := c.tx.ExecContext(ctx, `
		INSERT INTO order_details (id, order_id, shop_order_id, product_id, product_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.OrderID, d.ShopOrderID, d.ProductID, d.ProductName, d.Quantity, d.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order detail: %w", mapError(err))
	}
	return nil
}

func (c *checkoutTx) SetShopOrderTotal(ctx context.Context, shopOrderID string, total decimal.Decimal) error {
	res, err := c.tx.ExecContext(ctx, "UPDATE shop_orders SET shop_total = $2 WHERE id = $1", shopOrderID, total)
	if err != nil {
		return fmt.Errorf("failed to set shop order total: %w", mapError(err))
	}
	return rowsAffected(res, "shop order", shopOrderID)
}

func (c *checkoutTx) SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	res, err := c.tx.ExecContext(ctx, "UPDATE orders SET total_amount = $2 WHERE id = $1", orderID, total)
	if err != nil {
		return fmt.Errorf("failed to set order total: %w", mapError(err))
	}
	return rowsAffected(res, "order", orderID)
}

func (c *checkoutTx) ReserveStock(ctx context.Context, productID string, quantity int) (bool, error) {
	res, err := c.tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
		quantity, productID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update product stock: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (c *checkoutTx) ClearCart(ctx context.Context, cartID string) error {
	if _, err := c.tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", mapError(err))
	}
	return touchCart(ctx, c.tx, cartID)
}
