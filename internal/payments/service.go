package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Events receives committed payment outcomes and any order status change
// they caused.
type Events interface {
	orders.StatusEvents
	PaymentUpdated(ctx context.Context, order *models.Order, payment *models.Payment) error
}

// Service exposes customer confirmation and admin verification of payments.
type Service interface {
	Confirm(ctx context.Context, userID, orderID uuid.UUID, input ConfirmInput) (*orders.PaymentDTO, error)
	Validate(ctx context.Context, input ValidateInput) (*orders.PaymentDTO, error)
	Refund(ctx context.Context, adminID, paymentID uuid.UUID, reason string) (*orders.PaymentDTO, error)
	GetForOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*orders.PaymentDTO, error)
}

// ConfirmInput is what the customer reports after paying out of band.
type ConfirmInput struct {
	TransactionReference string
	Note                 *string
}

type ValidateInput struct {
	AdminID   uuid.UUID
	PaymentID uuid.UUID
	Approve   bool
	Note      *string
}

// Viewer identifies who is reading a payment. Admins may read any order.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type service struct {
	repo     orders.Repository
	products *product.Repository
	tx       txRunner
	events   Events
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the payment service.
func NewService(repo orders.Repository, products *product.Repository, tx txRunner, events Events, logg *logger.Logger) (Service, error) {
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
		return nil, fmt.Errorf("payment events publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		events:   events,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Confirm records the customer's transfer reference and tells admins the
// payment awaits validation. The order status is left alone until then.
func (s *service) Confirm(ctx context.Context, userID, orderID uuid.UUID, input ConfirmInput) (*orders.PaymentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reference := strings.TrimSpace(input.TransactionReference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	var (
		order   *models.Order
		payment *models.Payment
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindOrderForUser(ctx, userID, orderID)
		if err != nil {
			return notFound(err, "order not found")
		}
		current, err := repo.FindPaymentByOrder(ctx, order.ID)
		if err != nil {
			return notFound(err, "payment not found")
		}
		if current.Method == enums.PaymentMethodCOD {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation, "cash on delivery payments cannot be confirmed")
		}
		if current.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation,
				fmt.Sprintf("payment in status %s cannot be confirmed", current.Status))
		}

		updates := map[string]any{
			"transaction_reference": reference,
			"confirmed_at":          s.now(),
		}
		if note := trimmed(input.Note); note != nil {
			updates["customer_note"] = *note
		}
		if err := repo.UpdatePayment(ctx, current.ID, updates); err != nil {
			return err
		}
		payment, err = repo.FindPayment(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, asTyped(err, "confirm payment")
	}

	s.publish(ctx, order, payment, order.Status)
	return orders.NewPaymentDTO(payment), nil
}

// Validate approves or rejects a pending payment. Approval moves an order
// still awaiting payment into PROCESSING.
func (s *service) Validate(ctx context.Context, input ValidateInput) (*orders.PaymentDTO, error) {
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	note := trimmed(input.Note)

	var (
		payment  *models.Payment
		order    *models.Order
		previous enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindPayment(ctx, input.PaymentID)
		if err != nil {
			return notFound(err, "payment not found")
		}
		if current.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation,
				fmt.Sprintf("payment in status %s cannot be validated", current.Status))
		}
		linked, err := repo.FindOrder(ctx, current.OrderID)
		if err != nil {
			return notFound(err, "order not found")
		}
		previous = linked.Status

		next := enums.PaymentStatusFailed
		if input.Approve {
			next = enums.PaymentStatusCompleted
		}
		if err := repo.UpdatePayment(ctx, current.ID, map[string]any{
			"status":       next,
			"validated_by": input.AdminID,
			"validated_at": s.now(),
		}); err != nil {
			return err
		}

		orderUpdates := map[string]any{}
		if input.Approve && linked.Status == enums.OrderStatusPendingPayment {
			orderUpdates["status"] = enums.OrderStatusProcessing
		}
		if note != nil {
			orderUpdates["admin_note"] = *note
		}
		if len(orderUpdates) > 0 {
			if err := repo.UpdateOrder(ctx, linked.ID, orderUpdates); err != nil {
				return err
			}
		}

		if payment, err = repo.FindPayment(ctx, current.ID); err != nil {
			return err
		}
		order, err = repo.FindOrder(ctx, linked.ID)
		return err
	})
	if err != nil {
		return nil, asTyped(err, "validate payment")
	}

	s.publish(ctx, order, payment, previous)
	return orders.NewPaymentDTO(payment), nil
}

// Refund reverses a completed payment and force-cancels the order. Stock is
// only restored when the order was not already cancelled.
func (s *service) Refund(ctx context.Context, adminID, paymentID uuid.UUID, reason string) (*orders.PaymentDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund reason is required")
	}

	var (
		payment  *models.Payment
		order    *models.Order
		previous enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindPayment(ctx, paymentID)
		if err != nil {
			return notFound(err, "payment not found")
		}
		if !current.Status.CanTransitionTo(enums.PaymentStatusRefunded) {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation,
				fmt.Sprintf("payment in status %s cannot be refunded", current.Status))
		}
		linked, err := repo.FindOrder(ctx, current.OrderID)
		if err != nil {
			return notFound(err, "order not found")
		}
		previous = linked.Status

		if err := repo.UpdatePayment(ctx, current.ID, map[string]any{
			"status":        enums.PaymentStatusRefunded,
			"refund_reason": reason,
		}); err != nil {
			return err
		}

		cancelReason := "Refunded: " + reason
		if linked.Status == enums.OrderStatusCancelled {
			err = repo.UpdateOrder(ctx, linked.ID, map[string]any{"cancellation_reason": cancelReason})
		} else {
			err = orders.CancelInTx(ctx, repo, s.products.WithTx(tx), linked, cancelReason)
		}
		if err != nil {
			return err
		}

		if payment, err = repo.FindPayment(ctx, current.ID); err != nil {
			return err
		}
		order, err = repo.FindOrder(ctx, linked.ID)
		return err
	})
	if err != nil {
		return nil, asTyped(err, "refund payment")
	}

	s.publish(ctx, order, payment, previous)
	return orders.NewPaymentDTO(payment), nil
}

func (s *service) GetForOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*orders.PaymentDTO, error) {
	var (
		order *models.Order
		err   error
	)
	if viewer.IsAdmin {
		order, err = s.repo.FindOrder(ctx, orderID)
	} else {
		order, err = s.repo.FindOrderForUser(ctx, viewer.UserID, orderID)
	}
	if err != nil {
		return nil, asTyped(notFound(err, "order not found"), "load order")
	}
	if order.Payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	return orders.NewPaymentDTO(order.Payment), nil
}

func (s *service) publish(ctx context.Context, order *models.Order, payment *models.Payment, previous enums.OrderStatus) {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("payment %s for order %s is now %s", payment.ID, order.OrderNumber, payment.Status))
	if err := s.events.PaymentUpdated(ctx, order, payment); err != nil {
		s.logg.Error(ctx, "failed to dispatch payment side effects", err)
	}
	if order.Status != previous {
		if err := s.events.StatusChanged(ctx, order, previous); err != nil {
			s.logg.Error(ctx, "failed to dispatch order status side effects", err)
		}
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return err
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
