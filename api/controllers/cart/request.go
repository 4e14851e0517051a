package cart

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/middleware"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	cartsvc "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type addItemRequest struct {
	ProductID string  `json:"productId" validate:"required,uuid"`
	VariantID *string `json:"variantId" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=999"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=999"`
}

type mergeRequest struct {
	GuestID string `json:"guestId" validate:"omitempty,max=64"`
}

func (p addItemRequest) toInput() (cartsvc.AddItemInput, error) {
	productID, err := uuid.Parse(p.ProductID)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid productId")
	}
	input := cartsvc.AddItemInput{ProductID: productID, Quantity: p.Quantity}
	if p.VariantID != nil {
		variantID, err := validators.ParseOptionalUUID(*p.VariantID, "variantId")
		if err != nil {
			return cartsvc.AddItemInput{}, err
		}
		input.VariantID = variantID
	}
	return input, nil
}

// ownerFromRequest prefers the signed-in user. Anonymous shoppers are keyed
// by the X-Guest-Id header.
func ownerFromRequest(r *http.Request) (cartsvc.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cartsvc.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cartsvc.UserOwner(userID), nil
	}
	if guestID := middleware.GuestIDFromContext(r.Context()); guestID != "" {
		return cartsvc.GuestOwner(guestID), nil
	}
	return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in or send "+middleware.GuestIDHeader)
}
