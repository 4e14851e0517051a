package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
)

// Payment is one-to-one with an order.
type Payment struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Method               enums.PaymentMethod `gorm:"column:method;not null"`
	Amount               decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Status               enums.PaymentStatus `gorm:"column:status;not null;index"`
	TransactionReference *string             `gorm:"column:transaction_reference"`
	CustomerNote         *string             `gorm:"column:customer_note"`
	ConfirmedAt          *time.Time          `gorm:"column:confirmed_at"`
	ValidatedBy          *uuid.UUID          `gorm:"column:validated_by;type:uuid"`
	ValidatedAt          *time.Time          `gorm:"column:validated_at"`
	RefundReason         *string             `gorm:"column:refund_reason"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
