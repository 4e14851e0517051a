package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

// Repository wires together catalog persistence and the stock counters.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProduct loads the product without associations.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindActiveBySlug returns an active product with its active variants,
// category and region.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at ASC")
		}).
		Preload("Category").
		Preload("Region").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive pages through active products newest first.
func (r *Repository) ListActive(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Region").
		Where("products.is_active = ?", true)

	if slug := strings.TrimSpace(filters.CategorySlug); slug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", slug)
	}
	if slug := strings.TrimSpace(filters.RegionSlug); slug != "" {
		query = query.Joins("JOIN regions ON regions.id = products.region_id").
			Where("regions.slug = ?", slug)
	}
	if q := strings.ToLower(strings.TrimSpace(filters.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}

	var rows []models.Product
	err := pagination.Apply(query, "products", cursor, limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) ListRegions(ctx context.Context) ([]models.Region, error) {
	var rows []models.Region
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *Repository) RegionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Region{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Variants", "Category", "Region").Create(product).Error
}

// CreateVariant inserts a new variant row.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// SetStock overwrites the counter on the variant when given, else the product.
func (r *Repository) SetStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, stock int) (int64, error) {
	res := r.stockTarget(ctx, productID, variantID).Update("stock", stock)
	return res.RowsAffected, res.Error
}

// DecrementStock subtracts qty from the variant when given, else the
// product. Availability is checked by the caller before this runs and the
// update itself is unconditional, so two concurrent checkouts of the last
// unit can both succeed.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	return r.stockTarget(ctx, productID, variantID).
		Update("stock", gorm.Expr("stock - ?", qty)).
		Error
}

// IncrementStock returns qty to the variant when given, else the product.
func (r *Repository) IncrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	return r.stockTarget(ctx, productID, variantID).
		Update("stock", gorm.Expr("stock + ?", qty)).
		Error
}

func (r *Repository) stockTarget(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) *gorm.DB {
	if variantID != nil {
		return r.db.WithContext(ctx).
			Model(&models.ProductVariant{}).
			Where("id = ? AND product_id = ?", *variantID, productID)
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID)
}
