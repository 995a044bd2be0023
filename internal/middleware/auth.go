package middleware

import (
	"net/http"
	"strings"

	"github.com/aliyev12/vistashopverse/internal/user"
	"github.com/aliyev12/vistashopverse/internal/utils"
)

const (
	accessTokenCookie = "access_token"
	sessionCartCookie = "session_cart_id"
)

// AuthMiddleware is passive: requests without credentials pass through
// anonymous, and the handlers decide what needs authentication. A
// token that is present but invalid is rejected outright.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cookie, err := r.Cookie(sessionCartCookie); err == nil && cookie.Value != "" {
			ctx = utils.WithSessionCartID(ctx, cookie.Value)
		}

		tokenStr := extractToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, err := user.ParseJWT(tokenStr)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx = utils.SetUserContext(ctx, claims.UserID, claims.Email, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken prefers the Authorization header over the auth cookie.
// Non-Bearer schemes are not ours to reject; they read as anonymous.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return ""
	}

	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// CORS allows the storefront origin and handles preflight.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "http://localhost:3000")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
