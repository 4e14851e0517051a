package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

// Purchasable is a product, optionally narrowed to a variant, that is
// currently on sale.
type Purchasable struct {
	Product *models.Product
	Variant *models.ProductVariant
}

// UnitPrice is the variant price when set, else the product price.
func (p Purchasable) UnitPrice() decimal.Decimal {
	if p.Variant != nil {
		return p.Variant.EffectivePrice(*p.Product)
	}
	return p.Product.Price
}

// Available is the stock counter the line draws from.
func (p Purchasable) Available() int {
	if p.Variant != nil {
		return p.Variant.Stock
	}
	return p.Product.Stock
}

// VariantDescription is the variant name, or nil for a plain product line.
func (p Purchasable) VariantDescription() *string {
	if p.Variant == nil {
		return nil
	}
	name := p.Variant.Name
	return &name
}

// EnsureStock fails with INVALID_OPERATION when qty exceeds live stock.
func (p Purchasable) EnsureStock(qty int) error {
	if qty > p.Available() {
		return pkgerrors.New(pkgerrors.CodeInvalidOperation,
			fmt.Sprintf("insufficient stock for %s: requested %d, available %d", p.Product.Name, qty, p.Available()))
	}
	return nil
}

// LoadPurchasable resolves a product/variant pair and checks both are active
// and that the variant belongs to the product.
func (r *Repository) LoadPurchasable(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (Purchasable, error) {
	product, err := r.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Purchasable{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Purchasable{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return Purchasable{}, pkgerrors.New(pkgerrors.CodeInvalidOperation, fmt.Sprintf("product %s is not available", product.Name))
	}
	out := Purchasable{Product: product}
	if variantID == nil {
		return out, nil
	}

	variant, err := r.FindVariant(ctx, *variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Purchasable{}, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return Purchasable{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}
	if variant.ProductID != product.ID {
		return Purchasable{}, pkgerrors.New(pkgerrors.CodeInvalidOperation, "variant does not belong to product")
	}
	if !variant.IsActive {
		return Purchasable{}, pkgerrors.New(pkgerrors.CodeInvalidOperation, fmt.Sprintf("variant %s is not available", variant.Name))
	}
	out.Variant = variant
	return out, nil
}
