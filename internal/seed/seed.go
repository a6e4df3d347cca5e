// Package seed loads demo shops, managers and catalog data from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// Data is the document layout of a seed file.
type Data struct {
	Shops      []entity.Shop     `yaml:"shops"`
	Managers   []Manager         `yaml:"managers"`
	Categories []entity.Category `yaml:"categories"`
	Brands     []entity.Brand    `yaml:"brands"`
	Products   []Product         `yaml:"products"`
}

// Manager binds a user to a shop.
type Manager struct {
	UserID string `yaml:"user_id"`
	ShopID string `yaml:"shop"`
}

// Product is a seeded catalog entry. Price is kept as text to avoid float rounding.
type Product struct {
	ID          string   `yaml:"id"`
	ShopID      string   `yaml:"shop"`
	CategoryID  string   `yaml:"category"`
	BrandID     string   `yaml:"brand"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Stock       int      `yaml:"stock"`
	Status      string   `yaml:"status"`
	Images      []string `yaml:"images"`
}

// Parse decodes a seed document.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return d, nil
}

// LoadFile reads the seed document at path, or the embedded demo data when path is empty.
func LoadFile(path string) (Data, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Apply writes d through repos. It does nothing when any shop already exists.
func Apply(ctx context.Context, repos repository.Repositories, d Data) error {
	existing, err := repos.Shops.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shops: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("Seed: Store already populated, skipping", "shops", len(existing))
		return nil
	}

	for _, s := range d.Shops {
		if s.Status == "" {
			s.Status = entity.StatusActive
		}
		if err := repos.Shops.Create(ctx, &s); err != nil {
			return fmt.Errorf("failed to seed shop %s: %w", s.ID, err)
		}
	}
	for _, m := range d.Managers {
		if err := repos.Managers.Create(ctx, &entity.Manager{UserID: m.UserID, ShopID: m.ShopID}); err != nil {
			return fmt.Errorf("failed to seed manager %s: %w", m.UserID, err)
		}
	}
	for _, c := range d.Categories {
		if err := repos.Taxonomy.CreateCategory(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	for _, b := range d.Brands {
		if err := repos.Taxonomy.CreateBrand(ctx, &b); err != nil {
			return fmt.Errorf("failed to seed brand %s: %w", b.Name, err)
		}
	}
	for _, sp := range d.Products {
		p, err := sp.entity()
		if err != nil {
			return err
		}
		if err := repos.Products.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sp.Name, err)
		}
		for i, url := range sp.Images {
			img := entity.ProductImage{ProductID: p.ID, ImageURL: url, IsFeature: i == 0, AltText: sp.Name}
			if err := repos.Products.AddImage(ctx, &img); err != nil {
				return fmt.Errorf("failed to seed image for %s: %w", sp.Name, err)
			}
		}
	}

	slog.Info("Seed: Store populated", "shops", len(d.Shops), "managers", len(d.Managers), "products", len(d.Products))
	return nil
}

func (sp Product) entity() (entity.Product, error) {
	price, err := decimal.NewFromString(sp.Price)
	if err != nil {
		return entity.Product{}, fmt.Errorf("invalid price %q for %s: %w", sp.Price, sp.Name, err)
	}
	status := entity.Status(sp.Status)
	if status == "" {
		status = entity.StatusActive
	}
	if !status.Valid() {
		return entity.Product{}, fmt.Errorf("invalid status %q for %s", sp.Status, sp.Name)
	}
	return entity.Product{
		ID:          sp.ID,
		ShopID:      sp.ShopID,
		CategoryID:  sp.CategoryID,
		BrandID:     sp.BrandID,
		Name:        sp.Name,
		Description: sp.Description,
		Price:       price,
		Stock:       sp.Stock,
		Status:      status,
	}, nil
}
