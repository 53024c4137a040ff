// Package apitoken manages a user's long-lived API tokens: listing, minting
// up to a per-user cap, and revocation with an ownership check.
package apitoken

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamhub-dev/accountd/internal/locks"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/security"
	"gorm.io/gorm"
)

var (
	// ErrCapacity reports that the user already holds the maximum number
	// of outstanding tokens.
	ErrCapacity = errors.New("apitoken: token limit reached")

	// ErrNotFound reports that no token exists with the given value.
	ErrNotFound = errors.New("apitoken: token not found")

	// ErrNotOwned reports that the token exists but belongs to another user.
	ErrNotOwned = errors.New("apitoken: token not owned by user")
)

// Service owns API token lifecycle operations.
type Service struct {
	db    *gorm.DB
	limit int
	locks *locks.Keyed
}

// NewService constructs an API token Service with the given per-user cap.
func NewService(conn *gorm.DB, limit int) *Service {
	return &Service{db: conn, limit: limit, locks: locks.NewKeyed()}
}

// Limit returns the per-user token cap.
func (s *Service) Limit() int {
	return s.limit
}

// List returns the user's tokens, oldest first.
func (s *Service) List(ctx context.Context, userID uint64) ([]models.APIToken, error) {
	var tokens []models.APIToken
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tokens).Error
	if errFind != nil {
		return nil, fmt.Errorf("apitoken: list for user %d: %w", userID, errFind)
	}
	return tokens, nil
}

// Create mints a new token for the user. The count check and the insert run
// in one transaction, serialized per user, so concurrent creates cannot push
// the user past the cap.
func (s *Service) Create(ctx context.Context, userID uint64) (models.APIToken, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var created models.APIToken
	errCreate := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.APIToken{}).Where("user_id = ?", userID).Count(&count).Error; errCount != nil {
			return fmt.Errorf("apitoken: count for user %d: %w", userID, errCount)
		}
		if count >= int64(s.limit) {
			return ErrCapacity
		}

		value, errToken := security.GenerateAuthToken()
		if errToken != nil {
			return fmt.Errorf("apitoken: generate: %w", errToken)
		}
		created = models.APIToken{UserID: userID, Token: value}
		if errInsert := tx.Create(&created).Error; errInsert != nil {
			return fmt.Errorf("apitoken: insert for user %d: %w", userID, errInsert)
		}
		return nil
	})
	if errCreate != nil {
		return models.APIToken{}, errCreate
	}
	return created, nil
}

// Revoke deletes the token with the given value. A missing token yields
// ErrNotFound; a token held by another user yields ErrNotOwned and the token
// is left in place.
func (s *Service) Revoke(ctx context.Context, userID uint64, value string) error {
	var token models.APIToken
	errFind := s.db.WithContext(ctx).Where("token = ?", value).First(&token).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errFind != nil {
		return fmt.Errorf("apitoken: find: %w", errFind)
	}
	if token.UserID != userID {
		return ErrNotOwned
	}
	if errDelete := s.db.WithContext(ctx).Delete(&models.APIToken{}, token.ID).Error; errDelete != nil {
		return fmt.Errorf("apitoken: delete %d: %w", token.ID, errDelete)
	}
	return nil
}
