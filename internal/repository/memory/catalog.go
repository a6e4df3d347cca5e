package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/google/uuid"
)

type shopRepository struct{ s *Store }

func (r *shopRepository) List(ctx context.Context) ([]entity.Shop, error) {
	var rows []shopRow
	_ = r.s.read(func(st *state) error {
		for _, row := range st.shops {
			rows = append(rows, row)
		}
		return nil
	})
	slices.SortFunc(rows, func(a, b shopRow) int { return cmp.Compare(b.seq, a.seq) })

	shops := make([]entity.Shop, 0, len(rows))
	for _, row := range rows {
		shops = append(shops, row.Shop)
	}
	return shops, nil
}

func (r *shopRepository) Get(ctx context.Context, id string) (entity.Shop, error) {
	var shop entity.Shop
	err := r.s.read(func(st *state) error {
		row, ok := st.shops[id]
		if !ok {
			return entity.NotFound("shop", id)
		}
		shop = row.Shop
		return nil
	})
	return shop, err
}

func (r *shopRepository) Create(ctx context.Context, shop *entity.Shop) error {
	return r.s.write(func(st *state) error {
		if shop.ID == "" {
			shop.ID = uuid.NewString()
		}
		if _, exists := st.shops[shop.ID]; exists {
			return fmt.Errorf("%w: shop %q already exists", entity.ErrConflict, shop.ID)
		}
		if err := st.checkShopUnique(*shop); err != nil {
			return err
		}
		now := r.s.now()
		shop.CreatedAt, shop.UpdatedAt = now, now
		st.shops[shop.ID] = shopRow{Shop: *shop, seq: st.next()}
		return nil
	})
}

func (r *shopRepository) Update(ctx context.Context, shop *entity.Shop) error {
	return r.s.write(func(st *state) error {
		row, ok := st.shops[shop.ID]
		if !ok {
			return entity.NotFound("shop", shop.ID)
		}
		if err := st.checkShopUnique(*shop); err != nil {
			return err
		}
		shop.CreatedAt = row.CreatedAt
		shop.UpdatedAt = r.s.now()
		row.Shop = *shop
		st.shops[shop.ID] = row
		return nil
	})
}

func (r *shopRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.shops[id]; !ok {
			return entity.NotFound("shop", id)
		}
		for pid, p := range st.products {
			if p.ShopID != id {
				continue
			}
			if err := st.deleteProduct(pid); err != nil {
				return err
			}
		}
		for uid, m := range st.managers {
			if m.ShopID == id {
				delete(st.managers, uid)
			}
		}
		delete(st.shops, id)
		return nil
	})
}

func (st *state) checkShopUnique(shop entity.Shop) error {
	for _, other := range st.shops {
		if other.ID == shop.ID {
			continue
		}
		if other.Name == shop.Name {
			return fmt.Errorf("%w: shop name %q is taken", entity.ErrConflict, shop.Name)
		}
		if other.Slug == shop.Slug {
			return fmt.Errorf("%w: shop slug %q is taken", entity.ErrConflict, shop.Slug)
		}
	}
	return nil
}

type managerRepository struct{ s *Store }

func (r *managerRepository) FindByUser(ctx context.Context, userID string) (entity.Manager, bool, error) {
	var (
		m  entity.Manager
		ok bool
	)
	_ = r.s.read(func(st *state) error {
		m, ok = st.managers[userID]
		return nil
	})
	return m, ok, nil
}

func (r *managerRepository) Create(ctx context.Context, m *entity.Manager) error {
	return r.s.write(func(st *state) error {
		if _, exists := st.managers[m.UserID]; exists {
			return fmt.Errorf("%w: user %q already manages a shop", entity.ErrConflict, m.UserID)
		}
		if _, ok := st.shops[m.ShopID]; !ok {
			return fmt.Errorf("%w: shop %q does not exist", entity.ErrConflict, m.ShopID)
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.RegistrationDate = r.s.now()
		st.managers[m.UserID] = *m
		return nil
	})
}

type taxonomyRepository struct{ s *Store }

func (r *taxonomyRepository) ListCategories(ctx context.Context) ([]entity.Category, error) {
	out := []entity.Category{}
	_ = r.s.read(func(st *state) error {
		for _, c := range st.categories {
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *taxonomyRepository) ListBrands(ctx context.Context) ([]entity.Brand, error) {
	out := []entity.Brand{}
	_ = r.s.read(func(st *state) error {
		for _, b := range st.brands {
			out = append(out, b)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.Brand) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *taxonomyRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	_ = r.s.read(func(st *state) error {
		_, ok = st.categories[id]
		return nil
	})
	return ok, nil
}

func (r *taxonomyRepository) BrandExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	_ = r.s.read(func(st *state) error {
		_, ok = st.brands[id]
		return nil
	})
	return ok, nil
}

func (r *taxonomyRepository) CreateCategory(ctx context.Context, c *entity.Category) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.categories {
			if other.Name == c.Name {
				return fmt.Errorf("%w: category %q exists", entity.ErrConflict, c.Name)
			}
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *taxonomyRepository) CreateBrand(ctx context.Context, b *entity.Brand) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.brands {
			if other.Name == b.Name {
				return fmt.Errorf("%w: brand %q exists", entity.ErrConflict, b.Name)
			}
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.Status == "" {
			b.Status = entity.StatusActive
		}
		st.brands[b.ID] = *b
		return nil
	})
}

type productRepository struct{ s *Store }

func (r *productRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, error) {
	out := []entity.Product{}
	_ = r.s.read(func(st *state) error {
		rows := make([]productRow, 0, len(st.products))
		query := strings.ToLower(f.Query)
		for _, row := range st.products {
			switch {
			case f.ShopID != "" && row.ShopID != f.ShopID:
				continue
			case f.CategoryID != "" && row.CategoryID != f.CategoryID:
				continue
			case f.BrandID != "" && row.BrandID != f.BrandID:
				continue
			case query != "" && !strings.Contains(strings.ToLower(row.Name), query):
				continue
			}
			rows = append(rows, row)
		}
		slices.SortFunc(rows, func(a, b productRow) int { return cmp.Compare(b.seq, a.seq) })

		if f.Offset >= len(rows) {
			return nil
		}
		rows = rows[f.Offset:]
		if f.Limit > 0 && len(rows) > f.Limit {
			rows = rows[:f.Limit]
		}
		for _, row := range rows {
			out = append(out, st.assembleProduct(row))
		}
		return nil
	})
	return out, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (entity.Product, error) {
	var p entity.Product
	err := r.s.read(func(st *state) error {
		row, ok := st.products[id]
		if !ok {
			return entity.NotFound("product", id)
		}
		p = st.assembleProduct(row)
		return nil
	})
	return p, err
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error {
		if err := st.checkProductRefs(*p); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		now := r.s.now()
		p.CreatedAt, p.UpdatedAt = now, now
		row := *p
		row.Images = nil
		st.products[p.ID] = productRow{Product: row, seq: st.next()}
		p.ShopName = st.shops[p.ShopID].Name
		return nil
	})
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.products[p.ID]
		if !ok {
			return entity.NotFound("product", p.ID)
		}
		if err := st.checkProductRefs(*p); err != nil {
			return err
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = r.s.now()
		row := *p
		row.Images = nil
		existing.Product = row
		st.products[p.ID] = existing
		p.ShopName = st.shops[p.ShopID].Name
		return nil
	})
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return entity.NotFound("product", id)
		}
		return st.deleteProduct(id)
	})
}

func (r *productRepository) AddImage(ctx context.Context, img *entity.ProductImage) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.products[img.ProductID]; !ok {
			return entity.NotFound("product", img.ProductID)
		}
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		st.images[img.ID] = imageRow{ProductImage: *img, seq: st.next()}
		return nil
	})
}

func (st *state) checkProductRefs(p entity.Product) error {
	if _, ok := st.shops[p.ShopID]; !ok {
		return fmt.Errorf("%w: shop %q does not exist", entity.ErrConflict, p.ShopID)
	}
	if _, ok := st.categories[p.CategoryID]; p.CategoryID != "" && !ok {
		return fmt.Errorf("%w: category %q does not exist", entity.ErrConflict, p.CategoryID)
	}
	if _, ok := st.brands[p.BrandID]; p.BrandID != "" && !ok {
		return fmt.Errorf("%w: brand %q does not exist", entity.ErrConflict, p.BrandID)
	}
	return nil
}

// deleteProduct removes the product with its images and cart lines. Order lines
// protect the product.
func (st *state) deleteProduct(id string) error {
	for _, d := range st.details {
		if d.ProductID == id {
			return fmt.Errorf("%w: product %q is referenced by orders", entity.ErrConflict, id)
		}
	}
	for iid, img := range st.images {
		if img.ProductID == id {
			delete(st.images, iid)
		}
	}
	for cid, it := range st.cartItems {
		if it.ProductID == id {
			delete(st.cartItems, cid)
		}
	}
	delete(st.products, id)
	return nil
}

func (st *state) assembleProduct(row productRow) entity.Product {
	p := row.Product
	p.ShopName = st.shops[p.ShopID].Name

	var imgs []imageRow
	for _, img := range st.images {
		if img.ProductID == p.ID {
			imgs = append(imgs, img)
		}
	}
	slices.SortFunc(imgs, func(a, b imageRow) int { return cmp.Compare(a.seq, b.seq) })

	p.Images = make([]entity.ProductImage, 0, len(imgs))
	for _, img := range imgs {
		p.Images = append(p.Images, img.ProductImage)
	}
	return p
}
