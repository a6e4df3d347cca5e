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

type cartRepository struct{ s *Store }

func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (entity.Cart, error) {
	var cart entity.Cart
	err := r.s.write(func(st *state) error {
		c, ok := st.carts[userID]
		if !ok {
			now := r.s.now()
			c = entity.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
			st.carts[userID] = c
		}
		cart = st.assembleCart(c)
		return nil
	})
	return cart, err
}

func (r *cartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.cartByID(cartID); !ok {
			return entity.NotFound("cart", cartID)
		}
		if _, ok := st.products[productID]; !ok {
			return entity.NotFound("product", productID)
		}
		if quantity < 1 || quantity > entity.MaxQuantity {
			return entity.Invalid("quantity must be between 1 and %d", entity.MaxQuantity)
		}
		for id, it := range st.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				if it.Quantity > entity.MaxQuantity-quantity {
					return entity.Invalid("quantity of %q in the cart would exceed %d", productID, entity.MaxQuantity)
				}
				it.Quantity += quantity
				st.cartItems[id] = it
				return st.touchCart(cartID, r.s.now())
			}
		}
		item := entity.CartItem{ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: quantity}
		st.cartItems[item.ID] = cartItemRow{CartItem: item, seq: st.next()}
		return st.touchCart(cartID, r.s.now())
	})
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	return r.s.write(func(st *state) error {
		for id, it := range st.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				delete(st.cartItems, id)
				return st.touchCart(cartID, r.s.now())
			}
		}
		return fmt.Errorf("%w: product %q is not in the cart", entity.ErrNotFound, productID)
	})
}

func (st *state) cartByID(cartID string) (entity.Cart, bool) {
	for _, c := range st.carts {
		if c.ID == cartID {
			return c, true
		}
	}
	return entity.Cart{}, false
}

func (st *state) touchCart(cartID string, at time.Time) error {
	c, ok := st.cartByID(cartID)
	if !ok {
		return entity.NotFound("cart", cartID)
	}
	c.UpdatedAt = at
	st.carts[c.UserID] = c
	return nil
}

// cartRows returns the cart's items in insertion order.
func (st *state) cartRows(cartID string) []cartItemRow {
	var rows []cartItemRow
	for _, it := range st.cartItems {
		if it.CartID == cartID {
			rows = append(rows, it)
		}
	}
	slices.SortFunc(rows, func(a, b cartItemRow) int { return cmp.Compare(a.seq, b.seq) })
	return rows
}

func (st *state) assembleCart(c entity.Cart) entity.Cart {
	rows := st.cartRows(c.ID)
	c.Items = make([]entity.CartItem, 0, len(rows))
	for _, row := range rows {
		it := row.CartItem
		p := st.products[it.ProductID]
		it.ProductName = p.Name
		it.Price = p.Price
		c.Items = append(c.Items, it)
	}
	c.Recalculate()
	return c
}
