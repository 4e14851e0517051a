package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

// Service exposes the public catalog and the admin product operations.
type Service interface {
	ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ProductSummaryDTO], error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListRegions(ctx context.Context) ([]RegionDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, input CreateVariantInput) (*VariantDTO, error)
	SetStock(ctx context.Context, productID uuid.UUID, input SetStockInput) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID  uuid.UUID
	RegionID    *uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

type CreateVariantInput struct {
	Name     string
	SKU      string
	Price    *decimal.Decimal
	Stock    int
	IsActive bool
}

// SetStockInput targets the variant when VariantID is set, else the product.
type SetStockInput struct {
	VariantID *uuid.UUID
	Stock     int
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ProductSummaryDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ProductSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListActive(ctx, filters, cursor, params.Limit)
	if err != nil {
		return pagination.Page[ProductSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	page := pagination.Trim(rows, params.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	out := pagination.Page[ProductSummaryDTO]{Items: make([]ProductSummaryDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, p := range page.Items {
		out.Items = append(out.Items, newSummaryDTO(p))
	}
	return out, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindActiveBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return newProductDTO(*product), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCategoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) ListRegions(ctx context.Context) ([]RegionDTO, error) {
	rows, err := s.repo.ListRegions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list regions")
	}
	out := make([]RegionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newRegionDTO(&rows[i]))
	}
	return out, nil
}

// CreateProduct inserts the product. A duplicate slug is a CONFLICT.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if name == "" || slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug are required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	ok, err := s.repo.CategoryExists(ctx, input.CategoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if input.RegionID != nil {
		ok, err := s.repo.RegionExists(ctx, *input.RegionID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check region")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
		}
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		RegionID:    input.RegionID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product slug %q already exists", slug))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return newProductDTO(*product), nil
}

// CreateVariant adds a variant to an existing product. A duplicate SKU is a CONFLICT.
func (s *service) CreateVariant(ctx context.Context, productID uuid.UUID, input CreateVariantInput) (*VariantDTO, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if name == "" || sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku are required")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	variant := &models.ProductVariant{
		ProductID: product.ID,
		Name:      name,
		SKU:       sku,
		Price:     input.Price,
		Stock:     input.Stock,
		IsActive:  input.IsActive,
	}
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("variant sku %q already exists", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
	}
	dto := newVariantDTO(*variant, *product)
	return &dto, nil
}

func (s *service) SetStock(ctx context.Context, productID uuid.UUID, input SetStockInput) error {
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	n, err := s.repo.SetStock(ctx, productID, input.VariantID, input.Stock)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock")
	}
	if n == 0 {
		if input.VariantID != nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
