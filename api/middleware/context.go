package middleware

import "context"

type contextKey string

const (
	ctxRequestID contextKey = "request_id"
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxGuestID   contextKey = "guest_id"
)

func RequestIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxRequestID) }

func UserIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxUserID) }

func RoleFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxRole) }

// GuestIDFromContext returns the anonymous cart owner sent by the client, if any.
func GuestIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxGuestID) }

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}

func WithGuestID(ctx context.Context, guestID string) context.Context {
	return withString(ctx, ctxGuestID, guestID)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
