package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"reviewgate/internal/common"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// TokenVerifier exchanges a bearer token for a verified user identity.
// Implementations live in infra/auth/ (e.g., Supabase Auth).
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// BearerAuth returns middleware that requires a bearer token and resolves it
// to a verified user identity. No handler behind it runs without one.
func BearerAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.Error(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		token := header
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			token = strings.TrimSpace(header[7:])
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			common.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the verified caller identity set by BearerAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// APIKeyAuth returns middleware that validates the X-API-Key header against
// configured keys. Service-to-service authentication for admin routes.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			common.Error(c, http.StatusUnauthorized, "missing X-API-Key header")
			c.Abort()
			return
		}

		if !isValidKey(apiKey, validKeys) {
			common.Error(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}

		c.Next()
	}
}

// isValidKey checks the provided key against the list of valid keys using constant-time comparison.
func isValidKey(key string, validKeys []string) bool {
	for _, valid := range validKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return true
		}
	}
	return false
}
