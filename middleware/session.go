package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
)

// SessionKeyLength is the byte length of generated guest session keys.
const SessionKeyLength = 20

// ResolveIdentity lets both registered users and guests through. Requests
// carrying an Authorization header are validated as JWTs; everything else
// is treated as a guest session, identified by the session key header. A
// guest without a key gets a fresh one, echoed back in the response header
// so the client can persist it.
func ResolveIdentity(cfg *config.Config) gin.HandlerFunc {
	jwtCheck := EnsureValidToken(cfg)

	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			// Registered user path: EnsureValidToken sets user_id and
			// continues the chain itself.
			jwtCheck(c)
			return
		}

		sessionKey := c.GetHeader(cfg.SessionKeyHeader)
		if sessionKey == "" {
			key, err := NewSessionKey()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "SESSION_ERROR",
						"message": "Failed to create guest session",
					},
				})
				c.Abort()
				return
			}
			sessionKey = key
		}

		c.Header(cfg.SessionKeyHeader, sessionKey)
		c.Set("session_key", sessionKey)
		c.Next()
	}
}

// NewSessionKey generates a random guest session key.
func NewSessionKey() (string, error) {
	buf := make([]byte, SessionKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GetSessionKey extracts the guest session key from the Gin context.
func GetSessionKey(c *gin.Context) (string, bool) {
	value, exists := c.Get("session_key")
	if !exists {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}
