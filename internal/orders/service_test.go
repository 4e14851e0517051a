package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/dbtest"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

type recordedChange struct {
	orderID  uuid.UUID
	previous enums.OrderStatus
	next     enums.OrderStatus
}

type stubEvents struct {
	mu      sync.Mutex
	changes []recordedChange
}

func (s *stubEvents) StatusChanged(_ context.Context, order *models.Order, previous enums.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, recordedChange{orderID: order.ID, previous: previous, next: order.Status})
	return nil
}

type fixture struct {
	svc     Service
	conn    *gorm.DB
	events  *stubEvents
	user    *models.User
	admin   *models.User
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	events := &stubEvents{}
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn), client, events, logger.Nop())
	require.NoError(t, err)
	return &fixture{
		svc:     svc,
		conn:    conn,
		events:  events,
		user:    dbtest.MustCreateUser(t, conn, enums.UserRoleCustomer),
		admin:   dbtest.MustCreateUser(t, conn, enums.UserRoleAdmin),
		product: dbtest.MustCreateProduct(t, conn, 300000, 8),
	}
}

// placeOrder seeds an order for two units as if checkout had already taken the stock.
func (f *fixture) placeOrder(t *testing.T, status enums.OrderStatus, number string) *models.Order {
	t.Helper()
	unit := f.product.Price
	qty := 2
	subtotal := unit.Mul(decimal.NewFromInt(int64(qty)))
	fee := decimal.NewFromInt(30000)
	order := &models.Order{
		OrderNumber:        number,
		UserID:             f.user.ID,
		Status:             status,
		PaymentMethod:      enums.PaymentMethodCOD,
		RecipientName:      "Tran Thi B",
		RecipientPhone:     "0912345678",
		ShippingAddress:    "1 Trang Tien, Ha Noi",
		TotalProductAmount: subtotal,
		ShippingFee:        fee,
		TotalAmount:        subtotal.Add(fee),
		Items: []models.OrderItem{{
			ProductID:   f.product.ID,
			ProductName: f.product.Name,
			UnitPrice:   unit,
			Quantity:    qty,
			Subtotal:    subtotal,
		}},
	}
	require.NoError(t, NewRepository(f.conn).CreateOrder(context.Background(), order))
	require.NoError(t, f.conn.Create(&models.Payment{
		OrderID: order.ID,
		Method:  order.PaymentMethod,
		Amount:  order.TotalAmount,
		Status:  enums.PaymentStatusPending,
	}).Error)
	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.product.ID).
		Update("stock", gorm.Expr("stock - ?", qty)).Error)
	return order
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.conn.First(&p, "id = ?", f.product.ID).Error)
	return p.Stock
}

func TestCustomerCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301AAAA0001")
	require.Equal(t, 6, f.stock(t))

	dto, err := f.svc.Cancel(ctx, f.user.ID, order.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)
	require.NotNil(t, dto.CancellationReason)
	assert.Equal(t, "changed my mind", *dto.CancellationReason)
	assert.Equal(t, 8, f.stock(t))

	require.Len(t, f.events.changes, 1)
	assert.Equal(t, enums.OrderStatusProcessing, f.events.changes[0].previous)
	assert.Equal(t, enums.OrderStatusCancelled, f.events.changes[0].next)
}

func TestCustomerCancelRejectedOnceShipping(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, enums.OrderStatusShipping, "MS20260301AAAA0002")

	_, err := f.svc.Cancel(context.Background(), f.user.ID, order.ID, "too slow")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidOperation), "got %v", err)
	assert.Equal(t, 6, f.stock(t))
	assert.Empty(t, f.events.changes)
}

func TestCustomerCannotSeeOthersOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301AAAA0003")

	_, err := f.svc.GetMine(ctx, uuid.New(), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Cancel(ctx, uuid.New(), order.ID, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	byNumber, err := f.svc.GetMineByNumber(ctx, f.user.ID, "ms20260301aaaa0003")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)
	require.NotNil(t, byNumber.Payment)
	assert.Equal(t, enums.PaymentStatusPending, byNumber.Payment.Status)
}

func TestAdminTransitionGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301AAAA0004")
	note := "packed"

	dto, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipping, AdminNote: &note, ActorID: f.admin.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipping, dto.Status)
	require.NotNil(t, dto.AdminNote)
	assert.Equal(t, "packed", *dto.AdminNote)

	handedOver := "handed to courier"
	dto, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipping, AdminNote: &handedOver, ActorID: f.admin.ID})
	require.NoError(t, err, "same status only updates the note")
	assert.Equal(t, enums.OrderStatusShipping, dto.Status)
	require.NotNil(t, dto.AdminNote)
	assert.Equal(t, handedOver, *dto.AdminNote)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered, ActorID: f.admin.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipping, ActorID: f.admin.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidOperation), "delivered may only be cancelled")

	dto, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCancelled, ActorID: f.admin.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)
	assert.Equal(t, 8, f.stock(t))

	for _, next := range []enums.OrderStatus{enums.OrderStatusPendingPayment, enums.OrderStatusProcessing, enums.OrderStatusShipping, enums.OrderStatusDelivered} {
		_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: next, ActorID: f.admin.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidOperation), "cancelled is terminal (%s)", next)
	}
	assert.Equal(t, 8, f.stock(t), "stock must only be restored once")
	require.Len(t, f.events.changes, 4)
	assert.Equal(t, f.events.changes[1].previous, f.events.changes[1].next)
}

func TestAdminListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301AAAA0005")
	f.placeOrder(t, enums.OrderStatusPendingPayment, "MS20260301BBBB0006")
	f.placeOrder(t, enums.OrderStatusPendingPayment, "MS20260301CCCC0007")

	pending := enums.OrderStatusPendingPayment
	page, err := f.svc.AdminList(ctx, AdminFilters{Status: &pending}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.AdminList(ctx, AdminFilters{Keyword: "bbbb"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "MS20260301BBBB0006", page.Items[0].OrderNumber)

	page, err = f.svc.AdminList(ctx, AdminFilters{Keyword: "0912345"}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)

	future := time.Now().UTC().Add(time.Hour)
	page, err = f.svc.AdminList(ctx, AdminFilters{CreatedFrom: &future}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	past := future.Add(-48 * time.Hour)
	_, err = f.svc.AdminList(ctx, AdminFilters{CreatedFrom: &future, CreatedTo: &past}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListMinePaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301DDDD0008")
	f.placeOrder(t, enums.OrderStatusProcessing, "MS20260301DDDD0009")

	page, err := f.svc.ListMine(ctx, f.user.ID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	next, err := f.svc.ListMine(ctx, f.user.ID, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.NotEqual(t, page.Items[0].ID, next.Items[0].ID)

	other, err := f.svc.ListMine(ctx, f.admin.ID, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}
