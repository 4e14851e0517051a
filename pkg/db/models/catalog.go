package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Region is the craft village or province a product originates from.
type Region struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Region) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Name      string     `gorm:"column:name;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Product is a sellable catalog entry. Stock applies when the product has no
// variants or a line references the product directly.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index"`
	RegionID    *uuid.UUID       `gorm:"column:region_id;type:uuid;index"`
	Name        string           `gorm:"column:name;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex"`
	Description string           `gorm:"column:description"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(14,2);not null"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID"`
	Category    *Category        `gorm:"foreignKey:CategoryID"`
	Region      *Region          `gorm:"foreignKey:RegionID"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type ProductVariant struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	SKU       string           `gorm:"column:sku;not null;uniqueIndex"`
	Price     *decimal.Decimal `gorm:"column:price;type:numeric(14,2)"`
	Stock     int              `gorm:"column:stock;not null;default:0"`
	IsActive  bool             `gorm:"column:is_active;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// EffectivePrice falls back to the product price when the variant has none.
func (v ProductVariant) EffectivePrice(product Product) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return product.Price
}
