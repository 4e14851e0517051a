package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's shipping addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Address, error)
	GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type CreateInput struct {
	RecipientName string
	Phone         string
	Street        string
	Ward          string
	District      string
	Province      string
	IsDefault     bool
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return rows, nil
}

// Create stores the address. A user's first address always becomes default.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	addr := &models.Address{
		UserID:        userID,
		RecipientName: strings.TrimSpace(input.RecipientName),
		Phone:         strings.TrimSpace(input.Phone),
		Street:        strings.TrimSpace(input.Street),
		Ward:          strings.TrimSpace(input.Ward),
		District:      strings.TrimSpace(input.District),
		Province:      strings.TrimSpace(input.Province),
		IsDefault:     input.IsDefault,
	}
	if addr.RecipientName == "" || addr.Phone == "" || addr.Street == "" || addr.Province == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient name, phone, street and province are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault && count > 0 {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, addr)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return addr, nil
}

// GetOwned returns NOT_FOUND for addresses belonging to someone else.
func (s *service) GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	return addr, nil
}

// Delete removes the address. Orders keep their own copy so history is safe.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}
