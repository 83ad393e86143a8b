package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/siwa/core"
	"github.com/layer-3/siwa/service"
)

// Context keys set by the auth middlewares.
const (
	ContextAddressKey = "userAddress"
	ContextScopesKey  = "userScopes"
	ContextTokenKey   = "sessionToken"
)

// AuthMiddleware creates middleware that requires a valid bearer session.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		session, err := authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrStoreOperationFailed) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired or revoked"})
			return
		}

		c.Set(ContextAddressKey, session.Address)
		c.Set(ContextScopesKey, session.Scopes)
		c.Set(ContextTokenKey, token)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves a bearer session when one is presented but
// lets unauthenticated requests pass through.
func OptionalAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			session, err := authService.ValidateSession(c.Request.Context(), token)
			if err == nil && session != nil {
				c.Set(ContextAddressKey, session.Address)
				c.Set(ContextScopesKey, session.Scopes)
				c.Set(ContextTokenKey, token)
			}
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
