package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
)

func MustCreateUser(t *testing.T, conn *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("ms_test_%s@example.com", uuid.NewString()),
		FullName: "Test User",
		Role:     role,
		IsActive: true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func MustCreateAddress(t *testing.T, conn *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	addr := &models.Address{
		UserID:        userID,
		RecipientName: "Nguyen Van A",
		Phone:         "0901234567",
		Street:        "5 Le Loi",
		Ward:          "Ben Nghe",
		District:      "District 1",
		Province:      "Ho Chi Minh",
		IsDefault:     true,
	}
	if err := conn.Create(addr).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return addr
}

func MustCreateCategory(t *testing.T, conn *gorm.DB) *models.Category {
	t.Helper()
	slug := "cat-" + uuid.NewString()[:8]
	category := &models.Category{Name: "Lacquerware", Slug: slug}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func MustCreateRegion(t *testing.T, conn *gorm.DB) *models.Region {
	t.Helper()
	region := &models.Region{Name: "Bat Trang", Slug: "region-" + uuid.NewString()[:8]}
	if err := conn.Create(region).Error; err != nil {
		t.Fatalf("create region: %v", err)
	}
	return region
}

// MustCreateProduct seeds an active product in a fresh category.
func MustCreateProduct(t *testing.T, conn *gorm.DB, price int64, stock int) *models.Product {
	t.Helper()
	category := MustCreateCategory(t, conn)
	product := &models.Product{
		CategoryID: category.ID,
		Name:       "Mosaic Vase",
		Slug:       "vase-" + uuid.NewString()[:8],
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		IsActive:   true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateVariant seeds an active variant. A nil price inherits the product price.
func MustCreateVariant(t *testing.T, conn *gorm.DB, productID uuid.UUID, price *decimal.Decimal, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID: productID,
		Name:      "Large",
		SKU:       "SKU-" + uuid.NewString()[:8],
		Price:     price,
		Stock:     stock,
		IsActive:  true,
	}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}
