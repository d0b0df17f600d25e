package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ownerContextKey struct{}

func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerContextKey{}).(string)
	return owner
}

// authMiddleware resolves the bearer credential to an owner identity and
// rejects the request before any work when it cannot.
func authMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse("missing bearer token"))
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(
				strings.TrimPrefix(header, "Bearer "),
				claims,
				func(*jwt.Token) (any, error) { return []byte(secret), nil },
				jwt.WithValidMethods([]string{"HS256"}),
			)
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, errorResponse("invalid token"))
				return
			}

			ownerID, _ := claims["user_id"].(string)
			if ownerID == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse("token has no user_id claim"))
				return
			}

			ctx := context.WithValue(r.Context(), ownerContextKey{}, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
