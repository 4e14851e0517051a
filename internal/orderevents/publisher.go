// Package orderevents turns committed order, payment and cart changes into
// asynchronous emails and notifications on the dispatch pool.
package orderevents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout/helpers"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/email"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/notifications"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/dispatch"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/money"
)

type mailer interface {
	SendOrderPlaced(ctx context.Context, to email.Recipient, order *models.Order, instructions string) error
	SendStatusChanged(ctx context.Context, to email.Recipient, order *models.Order) (bool, error)
	SendAbandonedCart(ctx context.Context, to email.Recipient, cart *models.Cart) error
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) (*models.Notification, error)
	NotifyAdmins(ctx context.Context, msg notifications.Message) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Publisher implements the post-commit hooks of checkout, orders and payments.
// Every hook only enqueues work; a full queue is reported to the caller,
// which logs it.
type Publisher struct {
	tasks    dispatch.Submitter
	mail     mailer
	notifier notifier
	users    userLookup
	bank     helpers.BankAccount
}

func NewPublisher(tasks dispatch.Submitter, mail mailer, notifier notifier, users userLookup, bank helpers.BankAccount) (*Publisher, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task submitter required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if users == nil {
		return nil, fmt.Errorf("users lookup required")
	}
	return &Publisher{tasks: tasks, mail: mail, notifier: notifier, users: users, bank: bank}, nil
}

// OrderPlaced sends the confirmation email and notifies the customer and
// the admins.
func (p *Publisher) OrderPlaced(_ context.Context, order *models.Order) error {
	snapshot := *order
	instructions := helpers.PaymentInstructions(snapshot.PaymentMethod, snapshot.OrderNumber, snapshot.TotalAmount, p.bank)
	link := orderLink(snapshot.OrderNumber)

	emailTask := p.orderTask("order-confirmation-email", dispatch.CategoryEmail, snapshot, func(ctx context.Context) error {
		to, err := p.recipient(ctx, snapshot.UserID)
		if err != nil {
			return err
		}
		return p.mail.SendOrderPlaced(ctx, to, &snapshot, instructions)
	})
	notifyTask := p.orderTask("order-placed-notification", dispatch.CategoryNotification, snapshot, func(ctx context.Context) error {
		_, err := p.notifier.Notify(ctx, snapshot.UserID, notifications.Message{
			Type:    enums.NotificationTypeOrderPlaced,
			Title:   "Order placed",
			Message: fmt.Sprintf("Order %s for %s was placed.", snapshot.OrderNumber, money.VND(snapshot.TotalAmount)),
			Link:    &link,
		})
		return multierr.Append(err, p.notifier.NotifyAdmins(ctx, notifications.Message{
			Type:    enums.NotificationTypeOrderPlaced,
			Title:   "New order",
			Message: fmt.Sprintf("Order %s (%s) needs attention.", snapshot.OrderNumber, snapshot.PaymentMethod),
			Link:    &link,
		}))
	})
	return multierr.Append(p.tasks.Submit(emailTask), p.tasks.Submit(notifyTask))
}

// StatusChanged emails and notifies the customer about the order's new status.
func (p *Publisher) StatusChanged(_ context.Context, order *models.Order, previous enums.OrderStatus) error {
	if order.Status == previous {
		return nil
	}
	snapshot := *order
	link := orderLink(snapshot.OrderNumber)

	emailTask := p.orderTask("order-status-email", dispatch.CategoryEmail, snapshot, func(ctx context.Context) error {
		to, err := p.recipient(ctx, snapshot.UserID)
		if err != nil {
			return err
		}
		_, err = p.mail.SendStatusChanged(ctx, to, &snapshot)
		return err
	})
	notifyTask := p.orderTask("order-status-notification", dispatch.CategoryNotification, snapshot, func(ctx context.Context) error {
		_, err := p.notifier.Notify(ctx, snapshot.UserID, notifications.Message{
			Type:    enums.NotificationTypeOrderStatus,
			Title:   "Order updated",
			Message: fmt.Sprintf("Order %s is now %s.", snapshot.OrderNumber, snapshot.Status),
			Link:    &link,
		})
		return err
	})
	return multierr.Append(p.tasks.Submit(emailTask), p.tasks.Submit(notifyTask))
}

// PaymentUpdated tells admins about a customer confirmation waiting for
// validation and tells the customer about any other payment outcome.
func (p *Publisher) PaymentUpdated(_ context.Context, order *models.Order, payment *models.Payment) error {
	snapshot := *order
	status := payment.Status
	awaitingReview := status == enums.PaymentStatusPending && payment.ConfirmedAt != nil
	link := orderLink(snapshot.OrderNumber)

	task := p.orderTask("payment-notification", dispatch.CategoryNotification, snapshot, func(ctx context.Context) error {
		if awaitingReview {
			return p.notifier.NotifyAdmins(ctx, notifications.Message{
				Type:    enums.NotificationTypePayment,
				Title:   "Payment awaiting validation",
				Message: fmt.Sprintf("The customer confirmed payment for order %s.", snapshot.OrderNumber),
				Link:    &link,
			})
		}
		_, err := p.notifier.Notify(ctx, snapshot.UserID, notifications.Message{
			Type:    enums.NotificationTypePayment,
			Title:   "Payment updated",
			Message: fmt.Sprintf("Payment for order %s is %s.", snapshot.OrderNumber, status),
			Link:    &link,
		})
		return err
	})
	task.Fields["payment_status"] = string(status)
	return p.tasks.Submit(task)
}

// AbandonedCart enqueues one reminder (email then notification) for a user
// cart. It returns dispatch.ErrQueueFull when the pool is saturated.
func (p *Publisher) AbandonedCart(_ context.Context, cart *models.Cart) error {
	if cart.UserID == nil {
		return fmt.Errorf("abandoned cart %s has no user", cart.ID)
	}
	snapshot := *cart
	userID := *cart.UserID
	link := "/cart"

	return p.tasks.Submit(dispatch.Task{
		Name:     "abandoned-cart-reminder",
		Category: dispatch.CategoryEmail,
		Fields:   map[string]any{"cart_id": snapshot.ID.String(), "user_id": userID.String()},
		Run: func(ctx context.Context) error {
			to, err := p.recipient(ctx, userID)
			if err != nil {
				return err
			}
			mailErr := p.mail.SendAbandonedCart(ctx, to, &snapshot)
			_, notifyErr := p.notifier.Notify(ctx, userID, notifications.Message{
				Type:    enums.NotificationTypeAbandonedCart,
				Title:   "Your cart is waiting",
				Message: fmt.Sprintf("You still have %d item(s) in your cart.", len(snapshot.Items)),
				Link:    &link,
			})
			return multierr.Append(mailErr, notifyErr)
		},
	})
}

func (p *Publisher) orderTask(name, category string, order models.Order, run func(ctx context.Context) error) dispatch.Task {
	return dispatch.Task{
		Name:     name,
		Category: category,
		Run:      run,
		Fields: map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
	}
}

func (p *Publisher) recipient(ctx context.Context, userID uuid.UUID) (email.Recipient, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return email.Recipient{}, fmt.Errorf("load recipient %s: %w", userID, err)
	}
	return email.Recipient{Email: user.Email, Name: user.FullName}, nil
}

func orderLink(orderNumber string) string {
	return "/orders/" + orderNumber
}
