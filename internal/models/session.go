package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims carried by a dashboard session token.
type SessionClaims struct {
	AccountID string `json:"sub_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
