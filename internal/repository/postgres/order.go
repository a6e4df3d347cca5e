package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/google/uuid"
)

type orderRepository struct {
	db *sql.DB
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, total_amount, status, created_at, updated_at FROM orders WHERE user_id = $1 ORDER BY position DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []entity.Order{}
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range orders {
		subs, err := loadShopOrders(ctx, r.db, "so.order_id = $1 ORDER BY so.position", orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].ShopOrders = subs
	}
	return orders, nil
}

func (r *orderRepository) GetByUser(ctx context.Context, userID, orderID string) (entity.Order, error) {
	var o entity.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, total_amount, status, created_at, updated_at FROM orders WHERE id = $1 AND user_id = $2",
		orderID, userID,
	).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, entity.NotFound("order", orderID)
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	o.ShopOrders, err = loadShopOrders(ctx, r.db, "so.order_id = $1 ORDER BY so.position", o.ID)
	if err != nil {
		return entity.Order{}, err
	}
	return o, nil
}

func (r *orderRepository) ListShopOrders(ctx context.Context, shopID string) ([]entity.ShopOrder, error) {
	return loadShopOrders(ctx, r.db, "so.shop_id = $1 ORDER BY so.position DESC", shopID)
}

func (r *orderRepository) GetShopOrder(ctx context.Context, id string) (entity.ShopOrder, error) {
	subs, err := loadShopOrders(ctx, r.db, "so.id = $1", id)
	if err != nil {
		return entity.ShopOrder{}, err
	}
	if len(subs) == 0 {
		return entity.ShopOrder{}, entity.NotFound("shop order", id)
	}
	return subs[0], nil
}

func (r *orderRepository) UpdateShopOrder(ctx context.Context, id string, status *entity.OrderStatus, d *entity.DeliveryInfo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT delivery_info_id FROM shop_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NotFound("shop order", id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock shop order: %w", err)
	}

	now := time.Now().UTC()
	if d != nil {
		if err := saveDelivery(ctx, tx, id, current, d, now); err != nil {
			return err
		}
	}
	if status != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE shop_orders SET status = $2, updated_at = $3 WHERE id = $1",
			id, *status, now,
		)
		if err != nil {
			return fmt.Errorf("failed to update shop order status: %w", mapError(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

// saveDelivery updates the delivery info bound to the shop order, or inserts and
// binds a new one when current is null.
func saveDelivery(ctx context.Context, tx *sql.Tx, shopOrderID string, current sql.NullString, d *entity.DeliveryInfo, now time.Time) error {
	var err error
	d.UpdatedAt = now
	if current.Valid {
		d.ID = current.String
		err = tx.QueryRowContext(ctx, `
			UPDATE delivery_info SET tracking_number = $2, carrier = $3, shipping_date = $4, delivery_date = $5,
				status = $6, updated_at = $7
			WHERE id = $1 RETURNING created_at`,
			d.ID, d.TrackingNumber, d.Carrier, d.ShippingDate, d.DeliveryDate, d.Status, d.UpdatedAt,
		).Scan(&d.CreatedAt)
	} else {
		d.ID = uuid.NewString()
		d.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO delivery_info (id, tracking_number, carrier, shipping_date, delivery_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.ID, d.TrackingNumber, d.Carrier, d.ShippingDate, d.DeliveryDate, d.Status, d.CreatedAt, d.UpdatedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save delivery info: %w", mapError(err))
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE shop_orders SET delivery_info_id = $2, updated_at = $3 WHERE id = $1",
		shopOrderID, d.ID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to bind delivery info: %w", mapError(err))
	}
	return nil
}

// loadShopOrders selects shop orders matching clause (which binds $1 to arg) and
// expands each with delivery info and line items.
func loadShopOrders(ctx context.Context, q queryer, clause string, arg string) ([]entity.ShopOrder, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT so.id, so.order_id, so.shop_id, s.name, so.status, so.shop_total, so.created_at, so.updated_at,
			d.id, d.tracking_number, d.carrier, d.shipping_date, d.delivery_date, d.status, d.created_at, d.updated_at
		FROM shop_orders so
		JOIN shops s ON s.id = so.shop_id
		LEFT JOIN delivery_info d ON d.id = so.delivery_info_id
		WHERE `+clause, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query shop orders: %w", err)
	}
	defer rows.Close()

	subs := []entity.ShopOrder{}
	for rows.Next() {
		var (
			so                               entity.ShopOrder
			dID, dTracking, dCarrier, dState sql.NullString
			dShipped, dDelivered             sql.NullTime
			dCreated, dUpdated               sql.NullTime
		)
		err := rows.Scan(&so.ID, &so.OrderID, &so.ShopID, &so.ShopName, &so.Status, &so.ShopTotal, &so.CreatedAt, &so.UpdatedAt,
			&dID, &dTracking, &dCarrier, &dShipped, &dDelivered, &dState, &dCreated, &dUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop order: %w", err)
		}
		if dID.Valid {
			so.Delivery = &entity.DeliveryInfo{
				ID:             dID.String,
				TrackingNumber: dTracking.String,
				Carrier:        dCarrier.String,
				ShippingDate:   timePtr(dShipped),
				DeliveryDate:   timePtr(dDelivered),
				Status:         entity.OrderStatus(dState.String),
				CreatedAt:      dCreated.Time,
				UpdatedAt:      dUpdated.Time,
			}
		}
		subs = append(subs, so)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range subs {
		items, err := loadDetails(ctx, q, subs[i].ID)
		if err != nil {
			return nil, err
		}
		subs[i].Items = items
	}
	return subs, nil
}

func loadDetails(ctx context.Context, q queryer, shopOrderID string) ([]entity.OrderDetail, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, shop_order_id, product_id, product_name, quantity, price
		FROM order_details WHERE shop_order_id = $1 ORDER BY position`, shopOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	items := []entity.OrderDetail{}
	for rows.Next() {
		var d entity.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ShopOrderID, &d.ProductID, &d.ProductName, &d.Quantity, &d.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
