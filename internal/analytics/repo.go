package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
)

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

type productTotal struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// Repository runs the aggregate queries behind the admin summary. All
// ranges are half open: from inclusive, to exclusive.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountByStatus(ctx context.Context, from, to time.Time) ([]statusCount, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) CompletedRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var out struct {
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("payments").
		Select("COALESCE(SUM(payments.amount), 0) AS revenue").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.status = ?", enums.PaymentStatusCompleted).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Scan(&out).Error
	return out.Revenue, err
}

// TopProducts ranks products by units sold on orders that were not cancelled.
func (r *Repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]productTotal, error) {
	var rows []productTotal
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, MAX(order_items.product_name) AS product_name, SUM(order_items.quantity) AS quantity, SUM(order_items.subtotal) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Group("order_items.product_id").
		Order("quantity DESC").
		Order("order_items.product_id").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
