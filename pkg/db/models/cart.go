package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart belongs to exactly one of a user or a guest.
type Cart struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID              *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	GuestID             *string    `gorm:"column:guest_id;uniqueIndex"`
	ExpiresAt           time.Time  `gorm:"column:expires_at;not null;index"`
	AbandonedNotifiedAt *time.Time `gorm:"column:abandoned_notified_at"`
	Items               []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CartItem keeps the price seen when the line was first added.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID     *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Quantity      int             `gorm:"column:quantity;not null"`
	PriceSnapshot decimal.Decimal `gorm:"column:price_snapshot;type:numeric(14,2);not null"`
	Product       *Product        `gorm:"foreignKey:ProductID"`
	Variant       *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Subtotal is quantity times the price snapshot.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.PriceSnapshot.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SameLine reports whether the item references the given product and variant.
func (i CartItem) SameLine(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == nil && variantID == nil
	}
	return *i.VariantID == *variantID
}
