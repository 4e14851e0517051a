package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
)

type OrderItemDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"productId"`
	VariantID          *uuid.UUID      `json:"variantId,omitempty"`
	ProductName        string          `json:"productName"`
	VariantDescription *string         `json:"variantDescription,omitempty"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	Quantity           int             `json:"quantity"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

type PaymentDTO struct {
	ID                   uuid.UUID           `json:"id"`
	OrderID              uuid.UUID           `json:"orderId"`
	Method               enums.PaymentMethod `json:"method"`
	Amount               decimal.Decimal     `json:"amount"`
	Status               enums.PaymentStatus `json:"status"`
	TransactionReference *string             `json:"transactionReference,omitempty"`
	CustomerNote         *string             `json:"customerNote,omitempty"`
	ConfirmedAt          *time.Time          `json:"confirmedAt,omitempty"`
	ValidatedBy          *uuid.UUID          `json:"validatedBy,omitempty"`
	ValidatedAt          *time.Time          `json:"validatedAt,omitempty"`
	RefundReason         *string             `json:"refundReason,omitempty"`
}

// OrderSummaryDTO is the list shape.
type OrderSummaryDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus,omitempty"`
	RecipientName string              `json:"recipientName"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// OrderDTO is the detail shape.
type OrderDTO struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"orderNumber"`
	UserID             uuid.UUID           `json:"userId"`
	Status             enums.OrderStatus   `json:"status"`
	PaymentMethod      enums.PaymentMethod `json:"paymentMethod"`
	RecipientName      string              `json:"recipientName"`
	RecipientPhone     string              `json:"recipientPhone"`
	ShippingAddress    string              `json:"shippingAddress"`
	Note               *string             `json:"note,omitempty"`
	TotalProductAmount decimal.Decimal     `json:"totalProductAmount"`
	ShippingFee        decimal.Decimal     `json:"shippingFee"`
	TotalAmount        decimal.Decimal     `json:"totalAmount"`
	AdminNote          *string             `json:"adminNote,omitempty"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
	Items              []OrderItemDTO      `json:"items"`
	Payment            *PaymentDTO         `json:"payment,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func NewPaymentDTO(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                   p.ID,
		OrderID:              p.OrderID,
		Method:               p.Method,
		Amount:               p.Amount,
		Status:               p.Status,
		TransactionReference: p.TransactionReference,
		CustomerNote:         p.CustomerNote,
		ConfirmedAt:          p.ConfirmedAt,
		ValidatedBy:          p.ValidatedBy,
		ValidatedAt:          p.ValidatedAt,
		RefundReason:         p.RefundReason,
	}
}

func NewOrderDTO(o *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		Status:             o.Status,
		PaymentMethod:      o.PaymentMethod,
		RecipientName:      o.RecipientName,
		RecipientPhone:     o.RecipientPhone,
		ShippingAddress:    o.ShippingAddress,
		Note:               o.Note,
		TotalProductAmount: o.TotalProductAmount,
		ShippingFee:        o.ShippingFee,
		TotalAmount:        o.TotalAmount,
		AdminNote:          o.AdminNote,
		CancellationReason: o.CancellationReason,
		Items:              make([]OrderItemDTO, 0, len(o.Items)),
		Payment:            NewPaymentDTO(o.Payment),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			VariantID:          item.VariantID,
			ProductName:        item.ProductName,
			VariantDescription: item.VariantDescription,
			UnitPrice:          item.UnitPrice,
			Quantity:           item.Quantity,
			Subtotal:           item.Subtotal,
		})
	}
	return dto
}

func newSummaryDTO(o models.Order) OrderSummaryDTO {
	dto := OrderSummaryDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		RecipientName: o.RecipientName,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
	}
	if o.Payment != nil {
		dto.PaymentStatus = o.Payment.Status
	}
	return dto
}
