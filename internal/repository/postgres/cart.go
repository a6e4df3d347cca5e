package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/google/uuid"
)

type cartRepository struct {
	db *sql.DB
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (entity.Cart, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (user_id) DO NOTHING",
		uuid.NewString(), userID, now,
	)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to create cart: %w", mapError(err))
	}

	c := entity.Cart{UserID: userID}
	err = r.db.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at FROM carts WHERE user_id = $1", userID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position`, c.ID)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	c.Items = []entity.CartItem{}
	for rows.Next() {
		it := entity.CartItem{CartID: c.ID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Price, &it.Quantity); err != nil {
			return entity.Cart{}, fmt.Errorf("failed to scan cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return entity.Cart{}, err
	}
	c.Recalculate()
	return c, nil
}

func (r *cartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if quantity < 1 || quantity > entity.MaxQuantity {
		return entity.Invalid("quantity must be between 1 and %d", entity.MaxQuantity)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity::BIGINT + EXCLUDED.quantity <= $5`,
		uuid.NewString(), cartID, productID, quantity, entity.MaxQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", mapError(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return entity.Invalid("quantity of %q in the cart would exceed %d", productID, entity.MaxQuantity)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", mapError(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: product %q is not in the cart", entity.ErrNotFound, productID)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

func touchCart(ctx context.Context, tx *sql.Tx, cartID string) error {
	res, err := tx.ExecContext(ctx, "UPDATE carts SET updated_at = $2 WHERE id = $1", cartID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to touch cart: %w", mapError(err))
	}
	return rowsAffected(res, "cart", cartID)
}
