package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status    string  `json:"status" validate:"required"`
	AdminNote *string `json:"adminNote" validate:"omitempty,max=1000"`
}

// AdminListOrders lists every order with keyword, status and date filters.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseAdminOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.AdminList(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AdminGet(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminUpdateOrderStatus applies an admin transition subject to the order
// state guard.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:   orderID,
			Status:    status,
			AdminNote: payload.AdminNote,
			ActorID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseAdminOrderFilters(r *http.Request) (orders.AdminFilters, error) {
	filters := orders.AdminFilters{
		Keyword: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return filters, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return filters, err
	}
	filters.CreatedFrom = from
	filters.CreatedTo = to
	return filters, nil
}

func adminIDFromRequest(r *http.Request) (uuid.UUID, error) {
	if !isAdmin(r) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "role required")
	}
	return userIDFromRequest(r)
}
