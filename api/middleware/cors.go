package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// IdempotencyReplayHeader marks a response served from a stored idempotent
// result.
const IdempotencyReplayHeader = "Idempotent-Replay"

// CORS allows the storefront origins to send auth, guest and idempotency
// headers and to read the request id and replay marker.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyHeader, GuestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader, IdempotencyReplayHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
