// Package access decides which identities may act on which marketplace records.
// The rule set is small: anyone may read the catalog, and a shop's records may only
// be written by the user bound to that shop as its manager.
package access

import (
	"context"
	"fmt"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
)

// Action is what the caller wants to do with a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind names a resource type.
type Kind string

const (
	KindShop      Kind = "shop"
	KindProduct   Kind = "product"
	KindCategory  Kind = "category"
	KindBrand     Kind = "brand"
	KindShopOrder Kind = "shop_order"
)

// Resource identifies the record being acted on. ShopID is the owning shop: the shop
// itself for KindShop, the product's shop, or the shop order's shop.
type Resource struct {
	Kind   Kind
	ShopID string
}

// Authorizer evaluates permissions against manager bindings.
type Authorizer struct {
	managers repository.ManagerRepository
}

// NewAuthorizer creates an Authorizer that looks bindings up in managers.
func NewAuthorizer(managers repository.ManagerRepository) *Authorizer {
	return &Authorizer{managers: managers}
}

// Binding returns the manager binding of id. ok is false for anonymous identities and
// for users who manage no shop.
func (a *Authorizer) Binding(ctx context.Context, id entity.Identity) (entity.Manager, bool, error) {
	if id.Anonymous() {
		return entity.Manager{}, false, nil
	}
	m, ok, err := a.managers.FindByUser(ctx, id.UserID)
	if err != nil {
		return entity.Manager{}, false, fmt.Errorf("failed to look up manager binding: %w", err)
	}
	return m, ok, nil
}

// Authorize reports whether id may perform action on res. A denial is not an error.
func (a *Authorizer) Authorize(ctx context.Context, id entity.Identity, action Action, res Resource) (bool, error) {
	if action == ActionRead && res.Kind != KindShopOrder {
		return true, nil
	}
	switch res.Kind {
	case KindShop, KindProduct, KindShopOrder:
	default:
		return false, nil
	}

	m, ok, err := a.Binding(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return m.ShopID == res.ShopID, nil
}

// Require is Authorize with the denial turned into an error: ErrUnauthenticated for
// anonymous callers, ErrPermission otherwise.
func (a *Authorizer) Require(ctx context.Context, id entity.Identity, action Action, res Resource) error {
	ok, err := a.Authorize(ctx, id, action, res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if id.Anonymous() {
		return fmt.Errorf("%w: %s %s", entity.ErrUnauthenticated, action, res.Kind)
	}
	return fmt.Errorf("%w: cannot %s this %s", entity.ErrPermission, action, res.Kind)
}
