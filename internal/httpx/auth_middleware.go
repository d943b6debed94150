package httpx

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenParser resolves a bearer token into the user id and role it carries.
type TokenParser func(ctx context.Context, token string) (userID, role string, err error)

const APIKeyHeader = "X-Api-Key"

func AuthMiddleware(parse TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}

			userID, role, err := parse(r.Context(), token)
			if err != nil {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			ctx := ContextWithUser(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through only requests whose authenticated role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFrom(r)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			JSONErrorWithRequest(r, w, http.StatusForbidden, "FORBIDDEN", "Insufficient role", nil)
		})
	}
}

// APIKeyMiddleware rejects requests without the configured key in X-Api-Key.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(APIKeyHeader)
			if given == "" {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "API_KEY_MISSING", "API key was not provided", nil)
				return
			}
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
				JSONErrorWithRequest(r, w, http.StatusUnauthorized, "API_KEY_INVALID", "API key is not valid", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
