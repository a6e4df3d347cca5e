package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type productRepository struct {
	db *sql.DB
}

const productColumns = `p.id, p.shop_id, s.name, p.category_id, p.brand_id, p.name, p.description,
	p.price, p.stock, p.status, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (entity.Product, error) {
	var (
		p               entity.Product
		category, brand sql.NullString
	)
	err := row.Scan(&p.ID, &p.ShopID, &p.ShopName, &category, &brand, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	p.CategoryID, p.BrandID = category.String, brand.String
	return p, err
}

func (r *productRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ShopID != "" {
		add("p.shop_id = $%d", f.ShopID)
	}
	if f.CategoryID != "" {
		add("p.category_id = $%d", f.CategoryID)
	}
	if f.BrandID != "" {
		add("p.brand_id = $%d", f.BrandID)
	}
	if f.Query != "" {
		add("p.name ILIKE '%%' || $%d || '%%'", f.Query)
	}

	query := "SELECT " + productColumns + " FROM products p JOIN shops s ON s.id = p.shop_id"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (entity.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p JOIN shops s ON s.id = p.shop_id WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Product{}, entity.NotFound("product", id)
	}
	if err != nil {
		return entity.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	products := []entity.Product{p}
	if err := r.loadImages(ctx, products); err != nil {
		return entity.Product{}, err
	}
	return products[0], nil
}

// loadImages fills Images for all products with a single query.
func (r *productRepository) loadImages(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Images = []entity.ProductImage{}
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, image_url, is_feature, alt_text FROM product_images WHERE product_id = ANY($1) ORDER BY position",
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img entity.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.IsFeature, &img.AltText); err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		i := index[img.ProductID]
		products[i].Images = append(products[i].Images, img)
	}
	return rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, shop_id, category_id, brand_id, name, description, price, stock, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING (SELECT name FROM shops WHERE id = $2)`,
		p.ID, p.ShopID, nullable(p.CategoryID), nullable(p.BrandID), p.Name, p.Description,
		p.Price, p.Stock, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ShopName)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", mapError(err))
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET shop_id = $2, category_id = $3, brand_id = $4, name = $5, description = $6,
			price = $7, stock = $8, status = $9, updated_at = $10
		WHERE id = $1
		RETURNING created_at, (SELECT name FROM shops WHERE id = $2)`,
		p.ID, p.ShopID, nullable(p.CategoryID), nullable(p.BrandID), p.Name, p.Description,
		p.Price, p.Stock, p.Status, p.UpdatedAt,
	).Scan(&p.CreatedAt, &p.ShopName)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NotFound("product", p.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", mapError(err))
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", mapError(err))
	}
	return rowsAffected(res, "product", id)
}

func (r *productRepository) AddImage(ctx context.Context, img *entity.ProductImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO product_images (id, product_id, image_url, is_feature, alt_text) VALUES ($1, $2, $3, $4, $5)",
		img.ID, img.ProductID, img.ImageURL, img.IsFeature, img.AltText,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
			return entity.NotFound("product", img.ProductID)
		}
		return fmt.Errorf("failed to insert product image: %w", mapError(err))
	}
	return nil
}
