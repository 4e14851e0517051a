package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/responses"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

const GuestIDHeader = "X-Guest-Id"

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// GuestID reads the anonymous cart identifier from X-Guest-Id. When disabled
// the header is ignored and guests cannot hold carts.
func GuestID(enabled bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(GuestIDHeader))
			if !enabled || raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !guestIDPattern.MatchString(raw) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid guest id").
					WithDetails(map[string]any{"header": GuestIDHeader}))
				return
			}

			ctx := WithGuestID(r.Context(), raw)
			if logg != nil {
				ctx = logg.WithGuestID(ctx, raw)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
