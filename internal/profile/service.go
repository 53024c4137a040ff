// Package profile owns profile reads and validated profile mutation,
// including the username change limit.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/streamhub-dev/accountd/internal/config"
	"github.com/streamhub-dev/accountd/internal/country"
	"github.com/streamhub-dev/accountd/internal/locks"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/session"
	"github.com/streamhub-dev/accountd/internal/subscription"
	"gorm.io/gorm"
)

// Service applies profile updates and assembles profile views.
type Service struct {
	db        *gorm.DB
	cfg       config.ProfileConfig
	validator *Validator
	sessions  *session.Manager
	subs      *subscription.Service
	locks     *locks.Keyed
	nowFn     func() time.Time
}

// NewService constructs a profile Service.
func NewService(conn *gorm.DB, cfg config.ProfileConfig, sessions *session.Manager, subs *subscription.Service) *Service {
	return &Service{
		db:        conn,
		cfg:       cfg,
		validator: NewValidator(conn),
		sessions:  sessions,
		subs:      subs,
		locks:     locks.NewKeyed(),
		nowFn:     time.Now,
	}
}

// View is the profile payload returned to the authenticated user.
type View struct {
	User         models.User          `json:"user"`
	CountryName  string               `json:"country_name,omitempty"`
	Subscription subscription.Summary `json:"subscription"`
}

// Get loads the user's profile together with their subscription summary.
func (s *Service) Get(ctx context.Context, userID uint64) (View, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).First(&user, userID).Error
	if errFind != nil {
		return View{}, fmt.Errorf("profile: load user %d: %w", userID, errFind)
	}
	return s.view(ctx, user)
}

// Update validates and applies a profile mutation for the user. The input is
// normalized against the user's current values, validated field by field, and
// only then applied. A username change counts against the configured limit
// and is serialized per user so concurrent requests cannot overrun it. Any
// successful mutation flags the user's cached credentials stale.
func (s *Service) Update(ctx context.Context, userID uint64, in UpdateInput) (View, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).First(&user, userID).Error
	if errFind != nil {
		return View{}, fmt.Errorf("profile: load user %d: %w", userID, errFind)
	}

	in = in.Normalize(&user)
	if errValidate := s.validator.Validate(ctx, &user, in); errValidate != nil {
		return View{}, errValidate
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	errUpdate := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reload under the lock; another request may have changed the
		// username since the pre-validation read.
		var current models.User
		if errReload := tx.First(&current, userID).Error; errReload != nil {
			return fmt.Errorf("profile: reload user %d: %w", userID, errReload)
		}

		renamed := !strings.EqualFold(in.Username, current.Username)
		if renamed {
			if current.NameChangedCount >= s.cfg.NameChangeLimit {
				return ErrNameChangeLimit
			}
			now := s.nowFn()
			current.NameChangedDate = &now
			current.NameChangedCount++
		}

		current.Username = in.Username
		current.Email = in.Email
		current.Country = canonicalCountry(in.Country)

		if errSave := tx.Save(&current).Error; errSave != nil {
			return fmt.Errorf("profile: save user %d: %w", userID, errSave)
		}
		user = current
		return nil
	})
	if errUpdate != nil {
		if errors.Is(errUpdate, ErrNameChangeLimit) {
			return View{}, ErrNameChangeLimit
		}
		return View{}, errUpdate
	}

	s.sessions.FlagUserForUpdate(userID)
	return s.view(ctx, user)
}

// NameChangesRemaining reports how many username changes the user has left.
func (s *Service) NameChangesRemaining(user *models.User) int {
	remaining := s.cfg.NameChangeLimit - user.NameChangedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Service) view(ctx context.Context, user models.User) (View, error) {
	out := View{User: user}
	if entry, ok := country.Resolve(user.Country); ok {
		out.CountryName = entry.Name
	}
	summary, errSummary := s.subs.Summary(ctx, user.ID)
	if errSummary != nil {
		return View{}, errSummary
	}
	out.Subscription = summary
	return out, nil
}

func canonicalCountry(code string) string {
	entry, ok := country.Resolve(code)
	if !ok {
		return ""
	}
	return entry.Alpha2
}
