package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategorySlug string `json:"category,omitempty"`
	RegionSlug   string `json:"region,omitempty"`
	Query        string `json:"q,omitempty"`
}

type CategoryDTO struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
}

type RegionDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type VariantDTO struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// ProductSummaryDTO is the browse-list shape.
type ProductSummaryDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Category  *CategoryDTO    `json:"category,omitempty"`
	Region    *RegionDTO      `json:"region,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ProductDTO is the detail shape with variants.
type ProductDTO struct {
	ProductSummaryDTO
	Description string       `json:"description"`
	IsActive    bool         `json:"isActive"`
	Variants    []VariantDTO `json:"variants"`
}

func newCategoryDTO(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, ParentID: c.ParentID, Name: c.Name, Slug: c.Slug}
}

func newRegionDTO(r *models.Region) *RegionDTO {
	if r == nil {
		return nil
	}
	return &RegionDTO{ID: r.ID, Name: r.Name, Slug: r.Slug}
}

func newSummaryDTO(p models.Product) ProductSummaryDTO {
	return ProductSummaryDTO{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		Stock:     p.Stock,
		Category:  newCategoryDTO(p.Category),
		Region:    newRegionDTO(p.Region),
		CreatedAt: p.CreatedAt,
	}
}

func newProductDTO(p models.Product) *ProductDTO {
	dto := &ProductDTO{
		ProductSummaryDTO: newSummaryDTO(p),
		Description:       p.Description,
		IsActive:          p.IsActive,
		Variants:          make([]VariantDTO, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		dto.Variants = append(dto.Variants, newVariantDTO(v, p))
	}
	return dto
}

func newVariantDTO(v models.ProductVariant, p models.Product) VariantDTO {
	return VariantDTO{ID: v.ID, Name: v.Name, SKU: v.SKU, Price: v.EffectivePrice(p), Stock: v.Stock}
}
