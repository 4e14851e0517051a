package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
)

// loadOrCreate returns the owner's cart, creating an empty one when absent.
func loadOrCreate(ctx context.Context, repo CartRepository, owner Owner, expiresAt time.Time) (*models.Cart, error) {
	cart, err := repo.FindByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.Cart{UserID: owner.UserID, GuestID: owner.GuestID, ExpiresAt: expiresAt}
	if _, err := repo.CreateIfAbsent(ctx, fresh); err != nil {
		return nil, err
	}
	// A concurrent request may have won the insert; read back whichever row exists.
	return repo.FindByOwner(ctx, owner)
}

// MergeGuest folds the guest cart into the user's cart and deletes the guest
// cart. Quantities are summed on collision and stock is not re-validated. A
// missing or empty guest cart leaves the user cart untouched. The repository
// is expected to be bound to the caller's transaction.
func MergeGuest(ctx context.Context, repo CartRepository, userID uuid.UUID, guestID string, expiresAt time.Time) (*models.Cart, error) {
	userCart, err := loadOrCreate(ctx, repo, UserOwner(userID), expiresAt)
	if err != nil {
		return nil, err
	}

	guestCart, err := repo.FindByOwner(ctx, GuestOwner(guestID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userCart, nil
	}
	if err != nil {
		return nil, err
	}
	if len(guestCart.Items) == 0 {
		if err := repo.DeleteCarts(ctx, []uuid.UUID{guestCart.ID}); err != nil {
			return nil, err
		}
		return userCart, nil
	}

	for _, guestItem := range guestCart.Items {
		merged := false
		for _, userItem := range userCart.Items {
			if userItem.SameLine(guestItem.ProductID, guestItem.VariantID) {
				if err := repo.UpdateItemQuantity(ctx, userItem.ID, userItem.Quantity+guestItem.Quantity); err != nil {
					return nil, err
				}
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		line := &models.CartItem{
			CartID:        userCart.ID,
			ProductID:     guestItem.ProductID,
			VariantID:     guestItem.VariantID,
			Quantity:      guestItem.Quantity,
			PriceSnapshot: guestItem.PriceSnapshot,
		}
		if err := repo.CreateItem(ctx, line); err != nil {
			return nil, err
		}
	}

	if err := repo.DeleteCarts(ctx, []uuid.UUID{guestCart.ID}); err != nil {
		return nil, err
	}
	if err := repo.Touch(ctx, userCart.ID, expiresAt); err != nil {
		return nil, err
	}
	return repo.FindByOwner(ctx, UserOwner(userID))
}
