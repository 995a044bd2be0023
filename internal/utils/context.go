package utils

import "context"

type contextKey string

const (
	UserIDKey        contextKey = "user_id"
	UserEmailKey     contextKey = "email"
	UserRoleKey      contextKey = "role"
	SessionCartIDKey contextKey = "session_cart_id"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id uint, email string, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRoleFromContext(ctx) == RoleAdmin
}

// WithSessionCartID stores the anonymous cart cookie value.
func WithSessionCartID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionCartIDKey, id)
}

func GetSessionCartIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionCartIDKey).(string)
	return id
}
