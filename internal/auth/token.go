package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/macacolandia/dashboard-api/internal/models"
)

// SessionManager issues and validates the signed session tokens backing
// the dashboard login cookie.
type SessionManager struct {
	secret string
	maxAge time.Duration
}

func NewSessionManager(secret string, maxAge time.Duration) *SessionManager {
	return &SessionManager{
		secret: secret,
		maxAge: maxAge,
	}
}

// MaxAge returns the configured session lifetime.
func (sm *SessionManager) MaxAge() time.Duration {
	return sm.maxAge
}

// Issue creates a signed session token for an authenticated account.
func (sm *SessionManager) Issue(account *models.Account) (string, error) {
	now := time.Now()

	claims := &models.SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(sm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// Validate parses a session token and returns its claims.
func (sm *SessionManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(sm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("invalid session token: missing account id")
	}

	return claims, nil
}
