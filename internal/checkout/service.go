package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout/helpers"
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

type addressLoader interface {
	GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
}

type orderEvents interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*Result, error)
}

// CheckoutInput captures the customer's checkout request.
type CheckoutInput struct {
	AddressID     uuid.UUID
	Note          *string
	PaymentMethod string
	GuestID       *string
}

// Result is the placed order plus what the customer should do next.
type Result struct {
	Order               *orders.OrderDTO `json:"order"`
	PaymentInstructions string           `json:"paymentInstructions"`
}

// Settings are the pricing and payment knobs checkout applies.
type Settings struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	Bank                  helpers.BankAccount
	CartTTL               time.Duration
}

type service struct {
	tx         txRunner
	cartRepo   cart.CartRepository
	ordersRepo orders.Repository
	products   *product.Repository
	addresses  addressLoader
	events     orderEvents
	settings   Settings
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	products *product.Repository,
	addresses addressLoader,
	events orderEvents,
	settings Settings,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address loader required")
	}
	if events == nil {
		return nil, fmt.Errorf("order events publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if settings.CartTTL <= 0 {
		settings.CartTTL = cart.DefaultTTL
	}
	return &service{
		tx:         tx,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		products:   products,
		addresses:  addresses,
		events:     events,
		settings:   settings,
		logg:       logg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Execute converts the user's cart into an order. Order, lines, payment,
// stock decrements and cart clearing commit together; notifications and
// email are dispatched afterwards and never fail the checkout.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}

	addr, err := s.addresses.GetOwned(ctx, userID, input.AddressID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var placed *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		products := s.products.WithTx(tx)

		if guest := trimmed(input.GuestID); guest != nil {
			if _, err := cart.MergeGuest(ctx, cartRepo, userID, *guest, now.Add(s.settings.CartTTL)); err != nil {
				return err
			}
		}

		userCart, err := cartRepo.FindByOwner(ctx, cart.UserOwner(userID))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if userCart == nil || len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation, "cart is empty")
		}

		lines, productTotal, err := buildLines(ctx, products, userCart.Items)
		if err != nil {
			return err
		}

		number, err := helpers.OrderNumber(now)
		if err != nil {
			return err
		}
		fee := helpers.ShippingFee(productTotal, s.settings.FreeShippingThreshold, s.settings.FlatShippingFee)
		order := &models.Order{
			OrderNumber:        number,
			UserID:             userID,
			Status:             method.InitialOrderStatus(),
			PaymentMethod:      method,
			RecipientName:      addr.RecipientName,
			RecipientPhone:     addr.Phone,
			ShippingAddress:    addr.Line(),
			Note:               trimmed(input.Note),
			TotalProductAmount: productTotal,
			ShippingFee:        fee,
			TotalAmount:        productTotal.Add(fee),
			Items:              lines,
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range lines {
			if err := products.DecrementStock(ctx, line.ProductID, line.VariantID, line.Quantity); err != nil {
				return err
			}
		}

		if err := ordersRepo.CreatePayment(ctx, &models.Payment{
			OrderID: order.ID,
			Method:  method,
			Amount:  order.TotalAmount,
			Status:  enums.PaymentStatusPending,
		}); err != nil {
			return err
		}

		if err := cartRepo.ClearItems(ctx, userCart.ID); err != nil {
			return err
		}

		placed, err = ordersRepo.FindOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout")
	}

	ctx = s.logg.WithOrderID(ctx, placed.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s placed total=%s method=%s", placed.OrderNumber, placed.TotalAmount.StringFixed(0), placed.PaymentMethod))
	if err := s.events.OrderPlaced(ctx, placed); err != nil {
		s.logg.Error(ctx, "failed to dispatch order placed side effects", err)
	}

	return &Result{
		Order:               orders.NewOrderDTO(placed),
		PaymentInstructions: helpers.PaymentInstructions(method, placed.OrderNumber, placed.TotalAmount, s.settings.Bank),
	}, nil
}

// buildLines re-checks every cart line against the live catalog and
// snapshots it into an order line priced at the cart's snapshot.
func buildLines(ctx context.Context, products *product.Repository, items []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	lines := make([]models.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		purchasable, err := products.LoadPurchasable(ctx, item.ProductID, item.VariantID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidOperation, "a product in the cart is no longer available")
			}
			return nil, decimal.Zero, err
		}
		if err := purchasable.EnsureStock(item.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
		subtotal := item.Subtotal()
		lines = append(lines, models.OrderItem{
			ProductID:          item.ProductID,
			VariantID:          item.VariantID,
			ProductName:        purchasable.Product.Name,
			VariantDescription: purchasable.VariantDescription(),
			UnitPrice:          item.PriceSnapshot,
			Quantity:           item.Quantity,
			Subtotal:           subtotal,
		})
		total = total.Add(subtotal)
	}
	return lines, total, nil
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
