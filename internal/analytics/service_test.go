package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/dbtest"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type line struct {
	product *models.Product
	qty     int
}

func seedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus, payment enums.PaymentStatus, lines ...line) *models.Order {
	t.Helper()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		sub := l.product.Price.Mul(decimal.NewFromInt(int64(l.qty)))
		total = total.Add(sub)
		items = append(items, models.OrderItem{
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			UnitPrice:   l.product.Price,
			Quantity:    l.qty,
			Subtotal:    sub,
		})
	}
	order := &models.Order{
		OrderNumber:        "MS-" + uuid.NewString()[:8],
		UserID:             userID,
		Status:             status,
		PaymentMethod:      enums.PaymentMethodBankTransfer,
		RecipientName:      "A",
		RecipientPhone:     "0900000000",
		ShippingAddress:    "HCM",
		TotalProductAmount: total,
		ShippingFee:        decimal.Zero,
		TotalAmount:        total,
		Items:              items,
	}
	require.NoError(t, conn.Create(order).Error)
	require.NoError(t, conn.Create(&models.Payment{OrderID: order.ID, Method: order.PaymentMethod, Amount: total, Status: payment}).Error)
	return order
}

func TestSummaryAggregates(t *testing.T) {
	conn := dbtest.Open(t).DB()
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer)
	vase := dbtest.MustCreateProduct(t, conn, 100000, 50)
	scarf := dbtest.MustCreateProduct(t, conn, 50000, 50)

	seedOrder(t, conn, user.ID, enums.OrderStatusProcessing, enums.PaymentStatusCompleted, line{vase, 2}, line{scarf, 1})
	seedOrder(t, conn, user.ID, enums.OrderStatusPendingPayment, enums.PaymentStatusPending, line{scarf, 5})
	seedOrder(t, conn, user.ID, enums.OrderStatusCancelled, enums.PaymentStatusRefunded, line{vase, 10})

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	summary, err := svc.Summary(context.Background(), SummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.Equal(t, int64(1), summary.OrdersByState[enums.OrderStatusProcessing])
	assert.Equal(t, int64(1), summary.OrdersByState[enums.OrderStatusCancelled])
	assert.Equal(t, int64(0), summary.OrdersByState[enums.OrderStatusDelivered])
	assert.True(t, decimal.NewFromInt(250000).Equal(summary.GrossRevenue), "revenue %s", summary.GrossRevenue)

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, scarf.ID, summary.TopProducts[0].ProductID)
	assert.Equal(t, int64(6), summary.TopProducts[0].Quantity)
	assert.Equal(t, vase.ID, summary.TopProducts[1].ProductID)
	assert.Equal(t, int64(2), summary.TopProducts[1].Quantity, "cancelled orders are excluded from the ranking")
}

func TestSummaryRangeExcludesOutsideOrders(t *testing.T) {
	conn := dbtest.Open(t).DB()
	user := dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer)
	p := dbtest.MustCreateProduct(t, conn, 100000, 50)
	old := seedOrder(t, conn, user.ID, enums.OrderStatusDelivered, enums.PaymentStatusCompleted, line{p, 1})
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", old.ID).UpdateColumn("created_at", time.Now().UTC().AddDate(0, -3, 0)).Error)

	svc, _ := NewService(NewRepository(conn))
	summary, err := svc.Summary(context.Background(), SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalOrders)
	assert.True(t, summary.GrossRevenue.IsZero())
	assert.Empty(t, summary.TopProducts)
}

func TestSummaryValidatesRange(t *testing.T) {
	svc, _ := NewService(NewRepository(dbtest.Open(t).DB()))
	now := time.Now().UTC()

	_, err := svc.Summary(context.Background(), SummaryRequest{From: now, To: now.Add(-time.Hour)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Summary(context.Background(), SummaryRequest{From: now.AddDate(-2, 0, 0), To: now})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
