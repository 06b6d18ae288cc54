// Package authjwt issues and validates the bearer tokens accepted by the
// HTTP API.
package authjwt

import (
	"time"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// Claims are the validated contents of a token.
type Claims struct {
	Account   sharedtypes.AccountID
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider defines the interface for JWT token operations.
type Provider interface {
	// GenerateToken creates a signed token for the given account.
	GenerateToken(account sharedtypes.AccountID, ttl time.Duration) (string, error)

	// ValidateToken validates a token and returns the claims if valid.
	ValidateToken(tokenString string) (*Claims, error)
}
