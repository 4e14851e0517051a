package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/dbtest"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo, conn
}

func TestCreateProductRejectsDuplicateSlug(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	category := dbtest.MustCreateCategory(t, conn)

	input := CreateProductInput{
		CategoryID: category.ID,
		Name:       "Lotus Lacquer Box",
		Slug:       "Lotus-Box",
		Price:      decimal.NewFromInt(250000),
		Stock:      4,
		IsActive:   true,
	}
	created, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "lotus-box", created.Slug)

	_, err = svc.CreateProduct(ctx, input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "expected conflict, got %v", err)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: uuid.New(),
		Name:       "x",
		Slug:       "x",
		Price:      decimal.NewFromInt(1),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateVariantRejectsDuplicateSKUAndInheritsPrice(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 300000, 10)

	v, err := svc.CreateVariant(ctx, product.ID, CreateVariantInput{Name: "Blue", SKU: "vase-blue", Stock: 2, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "VASE-BLUE", v.SKU)
	assert.True(t, v.Price.Equal(decimal.NewFromInt(300000)))

	_, err = svc.CreateVariant(ctx, product.ID, CreateVariantInput{Name: "Blue Again", SKU: "VASE-BLUE", IsActive: true})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "expected conflict, got %v", err)
}

func TestGetBySlugHidesInactiveVariants(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 100000, 5)
	active := dbtest.MustCreateVariant(t, conn, product.ID, nil, 3)
	inactive := dbtest.MustCreateVariant(t, conn, product.ID, nil, 3)
	require.NoError(t, conn.Model(&models.ProductVariant{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	dto, err := svc.GetBySlug(ctx, product.Slug)
	require.NoError(t, err)
	require.Len(t, dto.Variants, 1)
	assert.Equal(t, active.ID, dto.Variants[0].ID)

	_, err = svc.GetBySlug(ctx, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsPaginatesAndFilters(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		dbtest.MustCreateProduct(t, conn, 100000, 1)
	}
	hidden := dbtest.MustCreateProduct(t, conn, 100000, 1)
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	first, err := svc.ListProducts(ctx, ListFilters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, ListFilters{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		assert.NotEqual(t, hidden.ID, item.ID)
		seen[item.ID] = true
	}
	assert.Len(t, seen, 3)

	none, err := svc.ListProducts(ctx, ListFilters{CategorySlug: "does-not-exist"}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestStockCounters(t *testing.T) {
	_, repo, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 100000, 5)
	variant := dbtest.MustCreateVariant(t, conn, product.ID, nil, 2)

	require.NoError(t, repo.DecrementStock(ctx, product.ID, nil, 3))
	require.NoError(t, repo.DecrementStock(ctx, product.ID, &variant.ID, 1))
	require.NoError(t, repo.IncrementStock(ctx, product.ID, &variant.ID, 5))

	reloaded, err := repo.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Stock)
	v, err := repo.FindVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, v.Stock)
}

func TestDecrementStockIsUnconditional(t *testing.T) {
	_, repo, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 100000, 1)

	// Two checkouts both passed the availability check on the last unit.
	require.NoError(t, repo.DecrementStock(ctx, product.ID, nil, 1))
	require.NoError(t, repo.DecrementStock(ctx, product.ID, nil, 1))

	reloaded, err := repo.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, reloaded.Stock)
}

func TestLoadPurchasable(t *testing.T) {
	_, repo, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 100000, 5)
	other := dbtest.MustCreateProduct(t, conn, 100000, 5)
	price := decimal.NewFromInt(120000)
	variant := dbtest.MustCreateVariant(t, conn, product.ID, &price, 1)

	line, err := repo.LoadPurchasable(ctx, product.ID, &variant.ID)
	require.NoError(t, err)
	assert.True(t, line.UnitPrice().Equal(price))
	assert.Equal(t, 1, line.Available())
	assert.True(t, pkgerrors.IsCode(line.EnsureStock(2), pkgerrors.CodeInvalidOperation))

	_, err = repo.LoadPurchasable(ctx, other.ID, &variant.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidOperation))

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", other.ID).Update("is_active", false).Error)
	_, err = repo.LoadPurchasable(ctx, other.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidOperation))
}

func TestSetStock(t *testing.T) {
	svc, repo, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.MustCreateProduct(t, conn, 100000, 5)

	require.NoError(t, svc.SetStock(ctx, product.ID, SetStockInput{Stock: 12}))
	reloaded, err := repo.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, reloaded.Stock)

	assert.True(t, pkgerrors.IsCode(svc.SetStock(ctx, uuid.New(), SetStockInput{Stock: 1}), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.SetStock(ctx, product.ID, SetStockInput{Stock: -1}), pkgerrors.CodeValidation))
}
