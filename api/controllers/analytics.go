package controllers

import (
	"net/http"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/validators"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/analytics"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

// AdminAnalyticsSummary reports order counts, revenue and best sellers for
// the [from, to) window.
func AdminAnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := analytics.SummaryRequest{}
		if from != nil {
			req.From = *from
		}
		if to != nil {
			req.To = *to
		}

		summary, err := svc.Summary(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
