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

type shopRepository struct {
	db *sql.DB
}

const shopColumns = "id, name, slug, description, status, created_at, updated_at"

func scanShop(row interface{ Scan(...any) error }) (entity.Shop, error) {
	var s entity.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *shopRepository) List(ctx context.Context) ([]entity.Shop, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+shopColumns+" FROM shops ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}
	defer rows.Close()

	shops := []entity.Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *shopRepository) Get(ctx context.Context, id string) (entity.Shop, error) {
	s, err := scanShop(r.db.QueryRowContext(ctx, "SELECT "+shopColumns+" FROM shops WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Shop{}, entity.NotFound("shop", id)
	}
	if err != nil {
		return entity.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}
	return s, nil
}

func (r *shopRepository) Create(ctx context.Context, s *entity.Shop) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO shops (id, name, slug, description, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		s.ID, s.Name, s.Slug, s.Description, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shop: %w", mapError(err))
	}
	return nil
}

func (r *shopRepository) Update(ctx context.Context, s *entity.Shop) error {
	s.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		"UPDATE shops SET name = $2, slug = $3, description = $4, status = $5, updated_at = $6 WHERE id = $1 RETURNING created_at",
		s.ID, s.Name, s.Slug, s.Description, s.Status, s.UpdatedAt,
	).Scan(&s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NotFound("shop", s.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", mapError(err))
	}
	return nil
}

func (r *shopRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shops WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", mapError(err))
	}
	return rowsAffected(res, "shop", id)
}

type managerRepository struct {
	db *sql.DB
}

func (r *managerRepository) FindByUser(ctx context.Context, userID string) (entity.Manager, bool, error) {
	var m entity.Manager
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, shop_id, registration_date FROM managers WHERE user_id = $1", userID,
	).Scan(&m.ID, &m.UserID, &m.ShopID, &m.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Manager{}, false, nil
	}
	if err != nil {
		return entity.Manager{}, false, fmt.Errorf("failed to find manager: %w", err)
	}
	return m, true, nil
}

func (r *managerRepository) Create(ctx context.Context, m *entity.Manager) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.RegistrationDate = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO managers (id, user_id, shop_id, registration_date) VALUES ($1, $2, $3, $4)",
		m.ID, m.UserID, m.ShopID, m.RegistrationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert manager: %w", mapError(err))
	}
	return nil
}

type taxonomyRepository struct {
	db *sql.DB
}

func (r *taxonomyRepository) ListCategories(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	out := []entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *taxonomyRepository) ListBrands(ctx context.Context) ([]entity.Brand, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, status FROM brands ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	out := []entity.Brand{}
	for rows.Next() {
		var b entity.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *taxonomyRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", id)
}

func (r *taxonomyRepository) BrandExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1)", id)
}

func (r *taxonomyRepository) exists(ctx context.Context, query, id string) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

func (r *taxonomyRepository) CreateCategory(ctx context.Context, c *entity.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES ($1, $2)", c.ID, c.Name); err != nil {
		return fmt.Errorf("failed to insert category: %w", mapError(err))
	}
	return nil
}

func (r *taxonomyRepository) CreateBrand(ctx context.Context, b *entity.Brand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = entity.StatusActive
	}
	if _, err := r.db.ExecContext(ctx, "INSERT INTO brands (id, name, status) VALUES ($1, $2, $3)", b.ID, b.Name, b.Status); err != nil {
		return fmt.Errorf("failed to insert brand: %w", mapError(err))
	}
	return nil
}
