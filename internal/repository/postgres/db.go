package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	_ "github.com/lib/pq"
)

// InitDB opens the connection pool and brings the schema up to date.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

// New exposes db through the repository ports.
func New(db *sql.DB) repository.Repositories {
	return repository.Repositories{
		Shops:    &shopRepository{db: db},
		Managers: &managerRepository{db: db},
		Taxonomy: &taxonomyRepository{db: db},
		Products: &productRepository{db: db},
		Carts:    &cartRepository{db: db},
		Orders:   &orderRepository{db: db},
		Checkout: &transactor{db: db},
	}
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(schema())
	return err
}

// inList renders vals as a quoted SQL list for CHECK constraints.
func inList[T ~string](vals ...T) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "'" + string(v) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func schema() string {
	statuses := inList(entity.StatusActive, entity.StatusInactive, entity.StatusDeleted)
	orderStatuses := inList(entity.OrderStatuses...)

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS shops (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN %[1]s),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS managers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			registration_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS brands (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN %[1]s)
		);

		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			brand_id TEXT REFERENCES brands(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL CHECK (price >= 0.01),
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN %[1]s),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS product_images (
			id TEXT PRIMARY KEY,
			position BIGSERIAL,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL,
			is_feature BOOLEAN NOT NULL DEFAULT FALSE,
			alt_text TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS carts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id TEXT PRIMARY KEY,
			position BIGSERIAL,
			cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE (cart_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			position BIGSERIAL,
			user_id TEXT NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN %[2]s),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders(user_id);

		CREATE TABLE IF NOT EXISTS delivery_info (
			id TEXT PRIMARY KEY,
			tracking_number TEXT NOT NULL UNIQUE,
			carrier TEXT NOT NULL DEFAULT '',
			shipping_date TIMESTAMPTZ,
			delivery_date TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN %[2]s),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS shop_orders (
			id TEXT PRIMARY KEY,
			position BIGSERIAL,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			shop_id TEXT NOT NULL REFERENCES shops(id),
			delivery_info_id TEXT UNIQUE REFERENCES delivery_info(id) ON DELETE SET NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN %[2]s),
			shop_total NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS shop_orders_shop_id_idx ON shop_orders(shop_id);

		CREATE TABLE IF NOT EXISTS order_details (
			id TEXT PRIMARY KEY,
			position BIGSERIAL,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			shop_order_id TEXT NOT NULL REFERENCES shop_orders(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			product_name TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			price NUMERIC(10,2) NOT NULL
		);
	`, statuses, orderStatuses)
}
