package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

// Repository defines persistence operations for orders, their lines and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	FindOrderByNumberForUser(ctx context.Context, userID uuid.UUID, number string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListOrders(ctx context.Context, filters AdminFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// StockRestorer returns stock to the catalog when an order is cancelled.
type StockRestorer interface {
	IncrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) error
}

// StatusEvents receives committed order status changes.
type StatusEvents interface {
	StatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus) error
}

// AdminFilters narrows the admin order listing.
type AdminFilters struct {
	Keyword     string
	Status      *enums.OrderStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
