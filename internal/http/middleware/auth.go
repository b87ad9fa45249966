// Bearer-token authentication. Validated claims are stored in the Gin
// context under "userID", "userName", and "userRole" for handlers, the
// access logger, and the rate limiter.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lfarias/go-keys-backend/internal/security"
)

// Context keys populated by Auth.
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
	CtxUserRole = "userRole"
)

// Auth returns a middleware that requires a valid "Authorization: Bearer"
// token signed by tokens. Missing or malformed credentials yield 401 with a
// code distinguishing expired tokens from invalid ones.
func Auth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c, "missing_token", "missing bearer token")
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			if errors.Is(err, security.ErrExpiredToken) {
				unauthorized(c, "token_expired", "token has expired")
				return
			}
			unauthorized(c, "invalid_token", "invalid token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole returns a middleware that rejects authenticated callers whose
// role is not the given one. Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "insufficient role",
			})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" unless the scheme is Bearer (case-insensitive).
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context, code, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
