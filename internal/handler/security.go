package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/bookworm/backend/internal/domain/auth"
)

// APIKeyHeader carries the caller's API key on order endpoints.
const APIKeyHeader = "api_key"

type userIDKey struct{}

// UserID extracts the authenticated user ID from the request context.
// The second return is false when the request did not pass RequireAPIKey.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// RequireAPIKey authenticates requests by computing the HMAC-SHA256 of the
// provided API key, looking it up in the repository, and performing a
// constant-time comparison to prevent timing attacks. The matched key's user
// ID is stored in the request context for downstream handlers.
func RequireAPIKey(apikeys auth.Repository, pepper []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				writeUnauthorized(w)
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(key))
			hash := mac.Sum(nil)

			info, err := apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
			if err != nil {
				writeUnauthorized(w)
				return
			}

			storedBytes, err := hex.DecodeString(info.KeyHash)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare(hash, storedBytes) != 1 {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, info.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Code:    http.StatusUnauthorized,
		Message: "invalid or missing API key",
	})
}
