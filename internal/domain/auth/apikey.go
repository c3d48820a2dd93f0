// Package auth defines the identity boundary: API keys mapping to the user
// account the core trusts for order operations.
package auth

import "context"

// APIKeyInfo holds the identity data for a validated API key. UserID is the
// account the key acts on behalf of; the core performs no further credential
// checks.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	UserID  int64
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
