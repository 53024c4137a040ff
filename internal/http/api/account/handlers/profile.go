package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/apitoken"
	"github.com/streamhub-dev/accountd/internal/authlink"
	"github.com/streamhub-dev/accountd/internal/profile"
)

// ProfileHandler manages the authenticated user's profile endpoints.
type ProfileHandler struct {
	profiles *profile.Service
	links    *authlink.Service
	tokens   *apitoken.Service
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *profile.Service, links *authlink.Service, tokens *apitoken.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, links: links, tokens: tokens}
}

// Info returns a compact identity payload for the session.
func (h *ProfileHandler) Info(c *gin.Context) {
	creds := getCredentials(c)
	view, errGet := h.profiles.Get(c.Request.Context(), creds.UserID)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load profile failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       view.User.ID,
		"username": view.User.Username,
		"email":    view.User.Email,
		"provider": creds.AuthProvider,
	})
}

// Get returns the full profile view with the subscription summary.
func (h *ProfileHandler) Get(c *gin.Context) {
	creds := getCredentials(c)
	view, errGet := h.profiles.Get(c.Request.Context(), creds.UserID)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load profile failed"})
		return
	}
	c.JSON(http.StatusOK, profilePayload(h.profiles, view))
}

// Update applies a validated profile mutation.
func (h *ProfileHandler) Update(c *gin.Context) {
	creds := getCredentials(c)

	var body profile.UpdateInput
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	view, errUpdate := h.profiles.Update(c.Request.Context(), creds.UserID, body)
	if errUpdate != nil {
		if ve, ok := profile.IsValidation(errUpdate); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
			return
		}
		if errors.Is(errUpdate, profile.ErrNameChangeLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have reached your name change limit"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update profile failed"})
		return
	}
	c.JSON(http.StatusOK, profilePayload(h.profiles, view))
}

// Authentication returns the user's authentication surface in one payload:
// linked external identities, supported providers, and issued API tokens.
func (h *ProfileHandler) Authentication(c *gin.Context) {
	creds := getCredentials(c)
	profiles, errList := h.links.ListProfiles(c.Request.Context(), creds.UserID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load auth profiles failed"})
		return
	}
	tokens, errTokens := h.tokens.List(c.Request.Context(), creds.UserID)
	if errTokens != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list auth tokens failed"})
		return
	}

	linked := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		linked = append(linked, gin.H{
			"provider":  p.AuthProvider,
			"remote_id": p.AuthID,
			"linked_at": p.CreatedAt,
		})
	}
	issued := make([]gin.H, 0, len(tokens))
	for _, token := range tokens {
		issued = append(issued, gin.H{
			"token":      token.Token,
			"created_at": token.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        creds.UserID,
		"username":  creds.Username,
		"profiles":  linked,
		"providers": h.links.Providers(),
		"tokens":    issued,
	})
}

func profilePayload(profiles *profile.Service, view profile.View) gin.H {
	return gin.H{
		"id":                     view.User.ID,
		"username":               view.User.Username,
		"email":                  view.User.Email,
		"country":                view.User.Country,
		"country_name":           view.CountryName,
		"name_changed_count":     view.User.NameChangedCount,
		"name_changed_date":      view.User.NameChangedDate,
		"name_changes_remaining": profiles.NameChangesRemaining(&view.User),
		"created_at":             view.User.CreatedAt,
		"subscription":           view.Subscription,
	}
}
