// Package subscription is a read-only view over subscription and payment
// records owned by the billing system. Nothing here mutates.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/streamhub-dev/accountd/internal/models"
	"gorm.io/gorm"
)

// Service reads subscription summaries for display.
type Service struct {
	db *gorm.DB
}

// NewService constructs a subscription Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PaymentProfileView is a payment profile with its derived billing cycle label.
type PaymentProfileView struct {
	models.PaymentProfile
	BillingCycle string `json:"billing_cycle"`
}

// Summary bundles the subscription a profile page displays.
type Summary struct {
	Subscription   *models.Subscription     `json:"subscription,omitempty"`
	Type           *models.SubscriptionType `json:"type,omitempty"`
	PaymentProfile *PaymentProfileView      `json:"payment_profile,omitempty"`
}

// Summary returns the user's active subscription, falling back to a pending
// one. A user with neither gets an empty summary, not an error.
func (s *Service) Summary(ctx context.Context, userID uint64) (Summary, error) {
	if s == nil || s.db == nil {
		return Summary{}, fmt.Errorf("subscription: not initialized")
	}

	sub, errFind := s.findByStatus(ctx, userID, models.SubscriptionStatusActive)
	if errFind != nil {
		return Summary{}, errFind
	}
	if sub == nil {
		sub, errFind = s.findByStatus(ctx, userID, models.SubscriptionStatusPending)
		if errFind != nil {
			return Summary{}, errFind
		}
	}
	if sub == nil {
		return Summary{}, nil
	}

	out := Summary{Subscription: sub}

	if code := strings.TrimSpace(sub.SubscriptionType); code != "" {
		var subType models.SubscriptionType
		errType := s.db.WithContext(ctx).Where("code = ?", code).First(&subType).Error
		switch {
		case errType == nil:
			out.Type = &subType
		case !errors.Is(errType, gorm.ErrRecordNotFound):
			return Summary{}, fmt.Errorf("subscription: load type %s: %w", code, errType)
		}
	}

	profile, errProfile := s.paymentProfile(ctx, sub)
	if errProfile != nil {
		return Summary{}, errProfile
	}
	out.PaymentProfile = profile
	return out, nil
}

// paymentProfile loads the referenced payment profile and attaches the
// billing cycle label. Absent references yield nil, not an error.
func (s *Service) paymentProfile(ctx context.Context, sub *models.Subscription) (*PaymentProfileView, error) {
	if sub == nil || sub.PaymentProfileID == nil || *sub.PaymentProfileID == 0 {
		return nil, nil
	}
	var profile models.PaymentProfile
	errFind := s.db.WithContext(ctx).First(&profile, *sub.PaymentProfileID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, fmt.Errorf("subscription: load payment profile: %w", errFind)
	}
	return &PaymentProfileView{
		PaymentProfile: profile,
		BillingCycle:   BillingCycleLabel(profile.BillingFrequency, profile.BillingPeriod),
	}, nil
}

func (s *Service) findByStatus(ctx context.Context, userID uint64, status string) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, fmt.Errorf("subscription: find %s: %w", strings.ToLower(status), errFind)
	}
	return &sub, nil
}

// BillingCycleLabel derives a human-readable billing cycle string from a
// payment profile's frequency and period, e.g. (1, "Month") -> "Monthly"
// and (3, "Month") -> "Every 3 Months".
func BillingCycleLabel(frequency int, period string) string {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		return ""
	}
	period = strings.ToUpper(period[:1]) + period[1:]
	if frequency <= 1 {
		switch period {
		case "Day":
			return "Daily"
		case "Week":
			return "Weekly"
		case "Month":
			return "Monthly"
		case "Year":
			return "Yearly"
		default:
			return "Every " + period
		}
	}
	return fmt.Sprintf("Every %d %ss", frequency, period)
}
