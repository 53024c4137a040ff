// Package authlink starts the flow that attaches an external OAuth identity
// to an existing account.
package authlink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/session"
	"gorm.io/gorm"
)

var (
	// ErrUnsupportedProvider reports a provider name outside the closed set.
	ErrUnsupportedProvider = errors.New("authlink: unsupported provider")

	// ErrAlreadyLinked reports an attempt to link the provider the session
	// is already authenticated with.
	ErrAlreadyLinked = errors.New("authlink: provider already authenticated")
)

// Service orchestrates account link requests.
type Service struct {
	db       *gorm.DB
	registry *Registry
	sessions *session.Manager
}

// NewService constructs an authlink Service.
func NewService(conn *gorm.DB, registry *Registry, sessions *session.Manager) *Service {
	return &Service{db: conn, registry: registry, sessions: sessions}
}

// BeginLink validates the requested provider for the session and, once
// accepted, marks the session as a pending account merge and returns the
// provider's authorize URL. Refused requests leave the session untouched.
func (s *Service) BeginLink(_ context.Context, creds session.Credentials, provider string) (string, error) {
	handler, ok := s.registry.Lookup(provider)
	if !ok {
		return "", ErrUnsupportedProvider
	}
	if strings.EqualFold(handler.Name(), creds.AuthProvider) {
		return "", ErrAlreadyLinked
	}

	s.sessions.SetMergeIntent(creds.SessionID)
	return handler.AuthenticationURL(uuid.NewString()), nil
}

// ListProfiles returns the external identities already linked to the user.
func (s *Service) ListProfiles(ctx context.Context, userID uint64) ([]models.AuthProfile, error) {
	var profiles []models.AuthProfile
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("auth_provider ASC").
		Find(&profiles).Error
	if errFind != nil {
		return nil, fmt.Errorf("authlink: list profiles for user %d: %w", userID, errFind)
	}
	return profiles, nil
}

// Providers returns the supported provider names.
func (s *Service) Providers() []string {
	return s.registry.Names()
}
