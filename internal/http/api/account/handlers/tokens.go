package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/apitoken"
)

// TokenHandler manages the user's API token endpoints.
type TokenHandler struct {
	tokens *apitoken.Service
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(tokens *apitoken.Service) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// List returns the user's tokens, oldest first.
func (h *TokenHandler) List(c *gin.Context) {
	userID := getUserID(c)
	tokens, errList := h.tokens.List(c.Request.Context(), userID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list auth tokens failed"})
		return
	}

	out := make([]gin.H, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, gin.H{
			"token":      token.Token,
			"created_at": token.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"tokens": out,
		"limit":  h.tokens.Limit(),
	})
}

// Create mints a new token for the user.
func (h *TokenHandler) Create(c *gin.Context) {
	userID := getUserID(c)
	token, errCreate := h.tokens.Create(c.Request.Context(), userID)
	if errCreate != nil {
		if errors.Is(errCreate, apitoken.ErrCapacity) {
			message := fmt.Sprintf("You have reached the maximum of %d login keys", h.tokens.Limit())
			c.JSON(http.StatusBadRequest, gin.H{"error": message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create auth token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token.Token,
		"created_at": token.CreatedAt,
	})
}

// Revoke deletes one of the user's tokens by value.
func (h *TokenHandler) Revoke(c *gin.Context) {
	userID := getUserID(c)
	value := strings.TrimSpace(c.Param("token"))
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	errRevoke := h.tokens.Revoke(c.Request.Context(), userID, value)
	switch {
	case errors.Is(errRevoke, apitoken.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Auth token not found"})
	case errors.Is(errRevoke, apitoken.ErrNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": "Auth token not owned by user"})
	case errRevoke != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke auth token failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "revoked"})
	}
}
