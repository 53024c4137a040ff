package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/config"
	"github.com/streamhub-dev/accountd/internal/db"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/security"
	"github.com/streamhub-dev/accountd/internal/session"
	"gorm.io/gorm"
)

// AuthHandler manages session authentication endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// Login verifies a username and password and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	// body holds the login request payload.
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing credentials"})
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where(db.CaseInsensitiveEqualExpr("username"), strings.ToLower(username)).
		First(&user).Error
	if errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.Active || user.Disabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	// Password logins carry no external auth provider.
	creds := session.NewCredentials(user.ID, user.Username, "")
	token, errIssue := session.IssueToken(h.jwtCfg, creds)
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
	})
}
