// Package cache declares the product read cache used by the catalog.
package cache

import (
	"context"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
)

// ProductCache holds product views keyed by product id.
type ProductCache interface {
	// Get reports a cached product; ok is false on a miss.
	Get(ctx context.Context, id string) (p entity.Product, ok bool, err error)
	Set(ctx context.Context, p entity.Product) error
	Delete(ctx context.Context, ids ...string) error
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) (entity.Product, bool, error) { return entity.Product{}, false, nil }
func (Nop) Set(context.Context, entity.Product) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
