package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/authlink"
)

// ConnectHandler starts the account link flow for an external provider.
type ConnectHandler struct {
	links *authlink.Service
}

// NewConnectHandler constructs a ConnectHandler.
func NewConnectHandler(links *authlink.Service) *ConnectHandler {
	return &ConnectHandler{links: links}
}

// Connect validates the requested provider and redirects the user to the
// provider's authorize page.
func (h *ConnectHandler) Connect(c *gin.Context) {
	creds := getCredentials(c)
	provider := c.Param("provider")

	redirect, errBegin := h.links.BeginLink(c.Request.Context(), creds, provider)
	switch {
	case errors.Is(errBegin, authlink.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication type not supported"})
	case errors.Is(errBegin, authlink.ErrAlreadyLinked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider already authenticated"})
	case errBegin != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "start account link failed"})
	default:
		c.Redirect(http.StatusFound, redirect)
	}
}
