package auth

import (
	"context"
	"time"
)

// TokenTypeAccess marks tokens that authorize API calls.
const TokenTypeAccess = "access"

// JWTService issues and verifies the bearer tokens that identify API callers.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is userID.
	GenerateToken(ctx context.Context, userID string) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString
	// and returns its claims. Failures are ErrInvalidToken, ErrExpiredToken,
	// ErrTokenNotYetValid or ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified contents of an access token.
type Claims struct {
	// UserID is the token subject: the id of the user the token was issued for.
	UserID string

	// TokenType indicates the purpose of the token.
	TokenType string

	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
