package auth

import (
	"context"
	"net/http"
	"strings"

	httputil "github.com/macacolandia/dashboard-api/pkg/http"

	"github.com/macacolandia/dashboard-api/internal/models"
)

type contextKey string

// SessionContextKey stores the validated session claims on the request
// context.
const SessionContextKey contextKey = "session"

// AccountFetcher looks up a current account record for authorization
// checks that must not trust stale token claims.
type AccountFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// SessionMiddleware resolves the session token from the cookie or, as a
// fallback for API clients, a bearer Authorization header, and injects the
// claims into the request context.
func SessionMiddleware(sm *SessionManager, cookieConfig CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := GetSessionCookie(r, cookieConfig)
			if err != nil || tokenString == "" {
				tokenString = bearerToken(r)
			}
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			claims, err := sm.Validate(tokenString)
			if err != nil {
				httputil.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces admin access. The role is re-read from the
// database rather than taken from the token, so demotions and blocks take
// effect immediately.
func RequireAdmin(accounts AccountFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := SessionFromContext(r)
			if claims == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				httputil.WriteUnauthorized(w, "account not found")
				return
			}
			if account.Blocked || account.Role != models.RoleAdmin {
				httputil.WriteForbidden(w, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the session claims set by SessionMiddleware,
// or nil when the request is unauthenticated.
func SessionFromContext(r *http.Request) *models.SessionClaims {
	claims, _ := r.Context().Value(SessionContextKey).(*models.SessionClaims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
