package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/middleware"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type checkoutRequest struct {
	AddressID     string  `json:"addressId" validate:"required,uuid"`
	PaymentMethod string  `json:"paymentMethod" validate:"required"`
	Note          *string `json:"note" validate:"omitempty,max=1000"`
	GuestID       *string `json:"guestId" validate:"omitempty,max=64"`
}

// Checkout converts the caller's cart into an order. A guest cart named by
// the body or the X-Guest-Id header is merged in first.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressID, err := uuid.Parse(payload.AddressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addressId"))
			return
		}

		input := checkout.CheckoutInput{
			AddressID:     addressID,
			Note:          payload.Note,
			PaymentMethod: payload.PaymentMethod,
			GuestID:       payload.GuestID,
		}
		if input.GuestID == nil {
			if guestID := middleware.GuestIDFromContext(r.Context()); guestID != "" {
				input.GuestID = &guestID
			}
		}

		result, err := svc.Execute(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
