package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/address"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type createAddressRequest struct {
	RecipientName string `json:"recipientName" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"required,max=32,phone"`
	Street        string `json:"street" validate:"required,max=255"`
	Ward          string `json:"ward" validate:"max=128"`
	District      string `json:"district" validate:"max=128"`
	Province      string `json:"province" validate:"required,max=128"`
	IsDefault     bool   `json:"isDefault"`
}

type addressResponse struct {
	ID            uuid.UUID `json:"id"`
	RecipientName string    `json:"recipientName"`
	Phone         string    `json:"phone"`
	Street        string    `json:"street"`
	Ward          string    `json:"ward,omitempty"`
	District      string    `json:"district,omitempty"`
	Province      string    `json:"province"`
	Line          string    `json:"line"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newAddressResponse(a models.Address) addressResponse {
	return addressResponse{
		ID:            a.ID,
		RecipientName: a.RecipientName,
		Phone:         a.Phone,
		Street:        a.Street,
		Ward:          a.Ward,
		District:      a.District,
		Province:      a.Province,
		Line:          a.Line(),
		IsDefault:     a.IsDefault,
		CreatedAt:     a.CreatedAt,
	}
}

func ListAddresses(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]addressResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newAddressResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func CreateAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), userID, address.CreateInput{
			RecipientName: payload.RecipientName,
			Phone:         payload.Phone,
			Street:        payload.Street,
			Ward:          payload.Ward,
			District:      payload.District,
			Province:      payload.Province,
			IsDefault:     payload.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAddressResponse(*created))
	}
}

func DeleteAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
