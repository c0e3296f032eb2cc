package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/services"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// AccessTokenCookie is the cookie Login sets for browser clients
const AccessTokenCookie = "access_token"

// TokenAuthenticator validates a raw access token
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*dto.TokenClaims, error)
}

// AuthMiddleware authenticates requests by Bearer header or access_token
// cookie and stores the caller's id, role and claims on the context.
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "Invalid or expired token"
			if !errors.Is(err, services.ErrUnauthorized) {
				status = http.StatusInternalServerError
				message = "Failed to authenticate"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"status":  "error",
				"message": message,
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
