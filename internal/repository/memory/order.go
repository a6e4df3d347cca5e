package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/google/uuid"
)

type orderRepository struct{ s *Store }

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	var out []entity.Order
	err := r.s.read(func(st *state) error {
		var rows []orderRow
		for _, o := range st.orders {
			if o.UserID == userID {
				rows = append(rows, o)
			}
		}
		slices.SortFunc(rows, func(a, b orderRow) int { return cmp.Compare(b.seq, a.seq) })
		out = make([]entity.Order, 0, len(rows))
		for _, row := range rows {
			out = append(out, st.assembleOrder(row))
		}
		return nil
	})
	return out, err
}

func (r *orderRepository) GetByUser(ctx context.Context, userID, orderID string) (entity.Order, error) {
	var o entity.Order
	err := r.s.read(func(st *state) error {
		row, ok := st.orders[orderID]
		if !ok || row.UserID != userID {
			return entity.NotFound("order", orderID)
		}
		o = st.assembleOrder(row)
		return nil
	})
	return o, err
}

func (r *orderRepository) ListShopOrders(ctx context.Context, shopID string) ([]entity.ShopOrder, error) {
	var out []entity.ShopOrder
	err := r.s.read(func(st *state) error {
		var rows []shopOrderRow
		for _, so := range st.shopOrders {
			if so.ShopID == shopID {
				rows = append(rows, so)
			}
		}
		slices.SortFunc(rows, func(a, b shopOrderRow) int { return cmp.Compare(b.seq, a.seq) })
		out = make([]entity.ShopOrder, 0, len(rows))
		for _, row := range rows {
			out = append(out, st.assembleShopOrder(row))
		}
		return nil
	})
	return out, err
}

func (r *orderRepository) GetShopOrder(ctx context.Context, id string) (entity.ShopOrder, error) {
	var so entity.ShopOrder
	err := r.s.read(func(st *state) error {
		row, ok := st.shopOrders[id]
		if !ok {
			return entity.NotFound("shop order", id)
		}
		so = st.assembleShopOrder(row)
		return nil
	})
	return so, err
}

func (r *orderRepository) UpdateShopOrder(ctx context.Context, id string, status *entity.OrderStatus, d *entity.DeliveryInfo) error {
	return r.s.write(func(st *state) error {
		row, ok := st.shopOrders[id]
		if !ok {
			return entity.NotFound("shop order", id)
		}
		now := r.s.now()
		if d != nil {
			if err := st.saveDelivery(&row, d, now); err != nil {
				return err
			}
		}
		if status != nil {
			row.Status = *status
		}
		row.UpdatedAt = now
		st.shopOrders[id] = row
		return nil
	})
}

func (st *state) saveDelivery(row *shopOrderRow, d *entity.DeliveryInfo, now time.Time) error {
	for id, other := range st.deliveries {
		if id != row.deliveryID && other.TrackingNumber == d.TrackingNumber {
			return fmt.Errorf("%w: tracking number %q is already used", entity.ErrConflict, d.TrackingNumber)
		}
	}
	if existing, ok := st.deliveries[row.deliveryID]; ok {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	} else {
		d.ID = uuid.NewString()
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	st.deliveries[d.ID] = *d
	row.deliveryID = d.ID
	return nil
}

func (st *state) assembleOrder(row orderRow) entity.Order {
	o := row.Order

	var subs []shopOrderRow
	for _, so := range st.shopOrders {
		if so.OrderID == o.ID {
			subs = append(subs, so)
		}
	}
	slices.SortFunc(subs, func(a, b shopOrderRow) int { return cmp.Compare(a.seq, b.seq) })

	o.ShopOrders = make([]entity.ShopOrder, 0, len(subs))
	for _, so := range subs {
		o.ShopOrders = append(o.ShopOrders, st.assembleShopOrder(so))
	}
	return o
}

func (st *state) assembleShopOrder(row shopOrderRow) entity.ShopOrder {
	so := row.ShopOrder
	so.ShopName = st.shops[so.ShopID].Name
	if d, ok := st.deliveries[row.deliveryID]; ok {
		so.Delivery = &d
	}

	var lines []detailRow
	for _, d := range st.details {
		if d.ShopOrderID == so.ID {
			lines = append(lines, d)
		}
	}
	slices.SortFunc(lines, func(a, b detailRow) int { return cmp.Compare(a.seq, b.seq) })

	so.Items = make([]entity.OrderDetail, 0, len(lines))
	for _, d := range lines {
		so.Items = append(so.Items, d.OrderDetail)
	}
	return so
}
