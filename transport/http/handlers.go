package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/siwa/core"
	"github.com/layer-3/siwa/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Challenge handles the challenge request.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), req.Address, c.ClientIP())
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// Verify handles the signed-challenge verification request.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Address   string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.authService.VerifySignature(c.Request.Context(), req.Message, req.Address, req.Signature)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout revokes the session for the presented token. The token comes from
// the Authorization header or, failing that, the request body.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token = req.Token
	}

	if err := h.authService.RevokeSession(c.Request.Context(), token); err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns information about the authenticated agent.
func (h *AuthHandlers) Me(c *gin.Context) {
	address, exists := c.Get(ContextAddressKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}
	scopes, _ := c.Get(ContextScopesKey)

	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"scopes":  scopes,
	})
}

// Authorize checks if an agent is authorized.
func (h *AuthHandlers) Authorize(c *gin.Context) {
	address, exists := c.Get(ContextAddressKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": true,
		"address":    address,
	})
}

// statusForError maps service errors to HTTP status codes: malformed input
// is 400, authentication failures 401, rate limiting 429 and store outages
// 503 so the caller knows a retry may help.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, core.ErrStoreOperationFailed):
		return http.StatusServiceUnavailable, "Storage unavailable, retry later"
	case errors.Is(err, core.ErrInvalidPublicKey),
		errors.Is(err, core.ErrInvalidAddress),
		errors.Is(err, core.ErrInvalidDomain),
		errors.Is(err, core.ErrInvalidURI),
		errors.Is(err, core.ErrInvalidMessage),
		errors.Is(err, core.ErrInvalidSignatureEncoding),
		errors.Is(err, core.ErrInvalidSignatureLength):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrSignatureVerificationFailed),
		errors.Is(err, core.ErrPublicKeyMismatch),
		errors.Is(err, core.ErrDomainMismatch),
		errors.Is(err, core.ErrNonceMismatch),
		errors.Is(err, core.ErrNonceInvalidOrExpired),
		errors.Is(err, core.ErrMessageExpired),
		errors.Is(err, core.ErrMessageNotYetValid),
		errors.Is(err, core.ErrMessageIssuedInFuture):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
