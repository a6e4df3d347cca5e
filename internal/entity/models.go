package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity is the authenticated caller as forwarded by the identity provider.
type Identity struct {
	UserID string
}

// Anonymous reports whether the request carried no identity.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// Status is the lifecycle status shared by shops, brands and products.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeleted:
		return true
	}
	return false
}

// Shop is a vendor in the marketplace.
type Shop struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Slug        string    `json:"slug" yaml:"slug"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// Manager binds one user to the shop they may administer.
type Manager struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ShopID           string    `json:"shop_id"`
	RegistrationDate time.Time `json:"registration_date"`
}

// Category groups products into departments.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Brand is a product manufacturer.
type Brand struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
}

// Product is a catalog entry owned by exactly one shop.
type Product struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop"`
	ShopName    string          `json:"shop_name"`
	CategoryID  string          `json:"category,omitempty"`
	BrandID     string          `json:"brand,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      Status          `json:"status"`
	Images      []ProductImage  `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductImage references an image held by the media storage.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	ImageURL  string `json:"image"`
	IsFeature bool   `json:"is_feature"`
	AltText   string `json:"alt_text"`
}
