package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes customer and admin order operations.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummaryDTO], error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	GetMineByNumber(ctx context.Context, userID uuid.UUID, number string) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*OrderDTO, error)

	AdminList(ctx context.Context, filters AdminFilters, params pagination.Params) (pagination.Page[OrderSummaryDTO], error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
}

// UpdateStatusInput carries an admin transition request.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Status    enums.OrderStatus
	AdminNote *string
	ActorID   uuid.UUID
}

type service struct {
	repo     Repository
	products *product.Repository
	tx       txRunner
	events   StatusEvents
	logg     *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, products *product.Repository, tx txRunner, events StatusEvents, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("status events publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, tx: tx, events: events, logg: logg}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummaryDTO], error) {
	if userID == uuid.Nil {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListUserOrders(ctx, userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return summaries(rows, params.Limit), nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrderForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	return NewOrderDTO(order), nil
}

func (s *service) GetMineByNumber(ctx context.Context, userID uuid.UUID, number string) (*OrderDTO, error) {
	order, err := s.repo.FindOrderByNumberForUser(ctx, userID, number)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	return NewOrderDTO(order), nil
}

// Cancel lets the owner cancel while the order is awaiting payment or
// processing. Stock is restored in the same transaction.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason is required")
	}

	var (
		order    *models.Order
		previous enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrderForUser(ctx, userID, orderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if !current.Status.CustomerCancellable() {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation,
				fmt.Sprintf("order in status %s can no longer be cancelled", current.Status))
		}
		previous = current.Status
		if err := cancelInTx(ctx, repo, s.products.WithTx(tx), current, reason, nil); err != nil {
			return err
		}
		order, err = repo.FindOrder(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, asTyped(err, "cancel order")
	}
	s.publish(ctx, order, previous)
	return NewOrderDTO(order), nil
}

func (s *service) AdminList(ctx context.Context, filters AdminFilters, params pagination.Params) (pagination.Page[OrderSummaryDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filters.CreatedFrom != nil && filters.CreatedTo != nil && !filters.CreatedFrom.Before(*filters.CreatedTo) {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "date range start must be before end")
	}
	rows, err := s.repo.ListOrders(ctx, filters, cursor, params.Limit)
	if err != nil {
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return summaries(rows, params.Limit), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	return NewOrderDTO(order), nil
}

// UpdateStatus applies an admin transition. Moving to CANCELLED restores stock.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.Status))
	}
	note := trimmed(input.AdminNote)

	var (
		order    *models.Order
		previous enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if !current.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation,
				fmt.Sprintf("cannot move order from %s to %s", current.Status, input.Status))
		}
		previous = current.Status

		if input.Status == enums.OrderStatusCancelled {
			reason := "Cancelled by admin"
			if note != nil {
				reason = *note
			}
			if err := cancelInTx(ctx, repo, s.products.WithTx(tx), current, reason, note); err != nil {
				return err
			}
		} else {
			updates := map[string]any{"status": input.Status}
			if note != nil {
				updates["admin_note"] = *note
			}
			if err := repo.UpdateOrder(ctx, current.ID, updates); err != nil {
				return err
			}
		}
		order, err = repo.FindOrder(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, asTyped(err, "update order status")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s moved %s -> %s", order.OrderNumber, previous, order.Status))
	s.publish(ctx, order, previous)
	return NewOrderDTO(order), nil
}

// CancelInTx marks the order cancelled and restores its stock. The
// repository and restorer must share the caller's transaction.
func CancelInTx(ctx context.Context, repo Repository, stock StockRestorer, order *models.Order, reason string) error {
	return cancelInTx(ctx, repo, stock, order, reason, nil)
}

func cancelInTx(ctx context.Context, repo Repository, stock StockRestorer, order *models.Order, reason string, adminNote *string) error {
	updates := map[string]any{
		"status":              enums.OrderStatusCancelled,
		"cancellation_reason": reason,
	}
	if adminNote != nil {
		updates["admin_note"] = *adminNote
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return err
	}
	return RestoreStock(ctx, stock, order.Items)
}

func (s *service) publish(ctx context.Context, order *models.Order, previous enums.OrderStatus) {
	if err := s.events.StatusChanged(ctx, order, previous); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "failed to dispatch order status side effects", err)
	}
}

func summaries(rows []models.Order, limit int) pagination.Page[OrderSummaryDTO] {
	page := pagination.Trim(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := pagination.Page[OrderSummaryDTO]{Items: make([]OrderSummaryDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, o := range page.Items {
		out.Items = append(out.Items, newSummaryDTO(o))
	}
	return out
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return asTyped(err, op)
}

func asTyped(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
