package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/session"
)

// CredentialsContextKey is where the auth middleware stores the session
// credentials for downstream handlers.
const CredentialsContextKey = "sessionCredentials"

// getCredentials returns the session credentials set by the auth middleware.
// A zero UserID means the request is unauthenticated.
func getCredentials(c *gin.Context) session.Credentials {
	value, ok := c.Get(CredentialsContextKey)
	if !ok {
		return session.Credentials{}
	}
	creds, ok := value.(session.Credentials)
	if !ok {
		return session.Credentials{}
	}
	return creds
}

func getUserID(c *gin.Context) uint64 {
	return getCredentials(c).UserID
}

// UserIDFromContext exposes the authenticated user ID for middleware
// outside this package.
func UserIDFromContext(c *gin.Context) uint64 {
	return getUserID(c)
}
