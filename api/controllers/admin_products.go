package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type createProductRequest struct {
	CategoryID  string          `json:"categoryId" validate:"required,uuid"`
	RegionID    *string         `json:"regionId" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,max=255"`
	Slug        string          `json:"slug" validate:"required,max=255,slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	IsActive    *bool           `json:"isActive"`
}

type createVariantRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	SKU      string           `json:"sku" validate:"required,max=64"`
	Price    *decimal.Decimal `json:"price"`
	Stock    int              `json:"stock" validate:"min=0"`
	IsActive *bool            `json:"isActive"`
}

type setStockRequest struct {
	VariantID *string `json:"variantId" validate:"omitempty,uuid"`
	Stock     *int    `json:"stock" validate:"required,min=0"`
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := uuid.Parse(payload.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid categoryId"))
			return
		}
		var regionID *uuid.UUID
		if payload.RegionID != nil {
			if regionID, err = validators.ParseOptionalUUID(*payload.RegionID, "regionId"); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		created, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			CategoryID:  categoryID,
			RegionID:    regionID,
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Price:       payload.Price,
			Stock:       payload.Stock,
			IsActive:    activeOrDefault(payload.IsActive),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminCreateVariant(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.CreateVariant(r.Context(), productID, product.CreateVariantInput{
			Name:     payload.Name,
			SKU:      payload.SKU,
			Price:    payload.Price,
			Stock:    payload.Stock,
			IsActive: activeOrDefault(payload.IsActive),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

// AdminSetStock overwrites the stock of a product, or of one of its variants
// when variantId is given.
func AdminSetStock(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var variantID *uuid.UUID
		if payload.VariantID != nil {
			if variantID, err = validators.ParseOptionalUUID(*payload.VariantID, "variantId"); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.SetStock(r.Context(), productID, product.SetStockInput{VariantID: variantID, Stock: *payload.Stock}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"productId": productID, "variantId": variantID, "stock": *payload.Stock})
	}
}
