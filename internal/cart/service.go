package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

// DefaultTTL is how long an untouched cart lives.
const DefaultTTL = 7 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations for users and guests.
type Service interface {
	GetOrCreate(ctx context.Context, owner Owner) (*CartDTO, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, owner Owner) (*CartDTO, error)
	Merge(ctx context.Context, userID uuid.UUID, guestID string) (*CartDTO, error)
}

type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

type service struct {
	repo     CartRepository
	products *product.Repository
	tx       txRunner
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a cart service. A zero ttl falls back to DefaultTTL.
func NewService(repo CartRepository, products *product.Repository, tx txRunner, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) expiresAt() time.Time {
	return s.now().Add(s.ttl)
}

func (s *service) GetOrCreate(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		cart, err = loadOrCreate(ctx, s.repo.WithTx(tx), owner, s.expiresAt())
		return err
	})
	if err != nil {
		return nil, wrapErr(err, "load cart")
	}
	return NewCartDTO(cart), nil
}

// AddItem adds qty of the product or variant, summing into an existing line
// for the same pair. The combined quantity must fit in live stock.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	return s.mutate(ctx, owner, "add cart item", func(tx *gorm.DB, repo CartRepository, cart *models.Cart) error {
		line, err := s.products.WithTx(tx).LoadPurchasable(ctx, input.ProductID, input.VariantID)
		if err != nil {
			return err
		}
		for _, item := range cart.Items {
			if !item.SameLine(input.ProductID, input.VariantID) {
				continue
			}
			total := item.Quantity + input.Quantity
			if err := line.EnsureStock(total); err != nil {
				return err
			}
			return repo.UpdateItemQuantity(ctx, item.ID, total)
		}
		if err := line.EnsureStock(input.Quantity); err != nil {
			return err
		}
		return repo.CreateItem(ctx, &models.CartItem{
			CartID:        cart.ID,
			ProductID:     input.ProductID,
			VariantID:     input.VariantID,
			Quantity:      input.Quantity,
			PriceSnapshot: line.UnitPrice(),
		})
	})
}

// UpdateItem sets the line quantity. Zero removes the line.
func (s *service) UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	return s.mutate(ctx, owner, "update cart item", func(tx *gorm.DB, repo CartRepository, cart *models.Cart) error {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if qty == 0 {
			return repo.DeleteItem(ctx, item.ID)
		}
		line, err := s.products.WithTx(tx).LoadPurchasable(ctx, item.ProductID, item.VariantID)
		if err != nil {
			return err
		}
		if err := line.EnsureStock(qty); err != nil {
			return err
		}
		return repo.UpdateItemQuantity(ctx, item.ID, qty)
	})
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, owner, "remove cart item", func(_ *gorm.DB, repo CartRepository, cart *models.Cart) error {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		return repo.DeleteItem(ctx, item.ID)
	})
}

func (s *service) Clear(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, owner, "clear cart", func(_ *gorm.DB, repo CartRepository, cart *models.Cart) error {
		return repo.ClearItems(ctx, cart.ID)
	})
}

func (s *service) Merge(ctx context.Context, userID uuid.UUID, guestID string) (*CartDTO, error) {
	guestID = strings.TrimSpace(guestID)
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if guestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}

	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		cart, err = MergeGuest(ctx, s.repo.WithTx(tx), userID, guestID, s.expiresAt())
		return err
	})
	if err != nil {
		return nil, wrapErr(err, "merge cart")
	}
	return NewCartDTO(cart), nil
}

// mutate runs fn against the owner's cart in one transaction, extends the
// expiry and returns the reloaded cart.
func (s *service) mutate(ctx context.Context, owner Owner, op string, fn func(tx *gorm.DB, repo CartRepository, cart *models.Cart) error) (*CartDTO, error) {
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expiresAt := s.expiresAt()
		current, err := loadOrCreate(ctx, repo, owner, expiresAt)
		if err != nil {
			return err
		}
		if err := fn(tx, repo, current); err != nil {
			return err
		}
		if err := repo.Touch(ctx, current.ID, expiresAt); err != nil {
			return err
		}
		cart, err = repo.FindByOwner(ctx, owner)
		return err
	})
	if err != nil {
		return nil, wrapErr(err, op)
	}
	return NewCartDTO(cart), nil
}

func wrapErr(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
