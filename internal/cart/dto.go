package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
)

// ItemDTO is one cart line as returned to clients.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSlug string          `json:"productSlug"`
	VariantID   *uuid.UUID      `json:"variantId,omitempty"`
	VariantName *string         `json:"variantName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartDTO is the cart view with derived totals.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Items     []ItemDTO       `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCartDTO shapes a cart loaded with its lines.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:        cart.ID,
		ExpiresAt: cart.ExpiresAt,
		Items:     make([]ItemDTO, 0, len(cart.Items)),
		Subtotal:  decimal.Zero,
	}
	for _, item := range cart.Items {
		line := ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceSnapshot,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSlug = item.Product.Slug
		}
		if item.Variant != nil {
			name := item.Variant.Name
			line.VariantName = &name
		}
		dto.Items = append(dto.Items, line)
		dto.ItemCount += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(line.Subtotal)
	}
	return dto
}
