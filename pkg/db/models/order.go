package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
)

// Order is immutable after placement except for status, admin note and
// cancellation reason. Recipient fields are copied from the address.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber        string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status             enums.OrderStatus   `gorm:"column:status;not null;index"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;not null"`
	RecipientName      string              `gorm:"column:recipient_name;not null"`
	RecipientPhone     string              `gorm:"column:recipient_phone;not null"`
	ShippingAddress    string              `gorm:"column:shipping_address;not null"`
	Note               *string             `gorm:"column:note"`
	TotalProductAmount decimal.Decimal     `gorm:"column:total_product_amount;type:numeric(14,2);not null"`
	ShippingFee        decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(14,2);not null"`
	TotalAmount        decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null"`
	AdminNote          *string             `gorm:"column:admin_note"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment            *Payment            `gorm:"foreignKey:OrderID"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots the catalog entry at order time.
type OrderItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID            uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID          *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	ProductName        string          `gorm:"column:product_name;not null"`
	VariantDescription *string         `gorm:"column:variant_description"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	Subtotal           decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
