// Package memory keeps every repository in process memory. Each write runs against a
// cloned snapshot that replaces the live state only when the write succeeds, which
// gives the checkout transaction all-or-nothing semantics without a database.
package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
)

type productRow struct {
	entity.Product
	seq int64
}

type imageRow struct {
	entity.ProductImage
	seq int64
}

type cartItemRow struct {
	entity.CartItem
	seq int64
}

type orderRow struct {
	entity.Order
	seq int64
}

type shopOrderRow struct {
	entity.ShopOrder
	deliveryID string
	seq        int64
}

type detailRow struct {
	entity.OrderDetail
	seq int64
}

type shopRow struct {
	entity.Shop
	seq int64
}

// state is one snapshot of the whole store. Rows are stored without their
// nested slices; reads assemble them.
type state struct {
	seq        int64
	shops      map[string]shopRow
	managers   map[string]entity.Manager // by user id
	categories map[string]entity.Category
	brands     map[string]entity.Brand
	products   map[string]productRow
	images     map[string]imageRow
	carts      map[string]entity.Cart // by user id
	cartItems  map[string]cartItemRow
	orders     map[string]orderRow
	shopOrders map[string]shopOrderRow
	details    map[string]detailRow
	deliveries map[string]entity.DeliveryInfo
}

func newState() *state {
	return &state{
		shops:      make(map[string]shopRow),
		managers:   make(map[string]entity.Manager),
		categories: make(map[string]entity.Category),
		brands:     make(map[string]entity.Brand),
		products:   make(map[string]productRow),
		images:     make(map[string]imageRow),
		carts:      make(map[string]entity.Cart),
		cartItems:  make(map[string]cartItemRow),
		orders:     make(map[string]orderRow),
		shopOrders: make(map[string]shopOrderRow),
		details:    make(map[string]detailRow),
		deliveries: make(map[string]entity.DeliveryInfo),
	}
}

func (st *state) clone() *state {
	return &state{
		seq:        st.seq,
		shops:      maps.Clone(st.shops),
		managers:   maps.Clone(st.managers),
		categories: maps.Clone(st.categories),
		brands:     maps.Clone(st.brands),
		products:   maps.Clone(st.products),
		images:     maps.Clone(st.images),
		carts:      maps.Clone(st.carts),
		cartItems:  maps.Clone(st.cartItems),
		orders:     maps.Clone(st.orders),
		shopOrders: maps.Clone(st.shopOrders),
		details:    maps.Clone(st.details),
		deliveries: maps.Clone(st.deliveries),
	}
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store is an in-memory storage backend.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Shops:    &shopRepository{s: s},
		Managers: &managerRepository{s: s},
		Taxonomy: &taxonomyRepository{s: s},
		Products: &productRepository{s: s},
		Carts:    &cartRepository{s: s},
		Orders:   &orderRepository{s: s},
		Checkout: &transactor{s: s},
	}
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write applies fn to a copy of the state and publishes the copy only on success.
func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.st = next
	return nil
}
