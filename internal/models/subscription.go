package models

import (
	"time"

	"gorm.io/datatypes"
)

// Subscription statuses used by the read-through summary.
const (
	SubscriptionStatusActive  = "Active"
	SubscriptionStatusPending = "Pending"
)

// Subscription records a user's paid subscription. This service only reads
// subscriptions; billing and state transitions are owned elsewhere.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user.

	SubscriptionType string `gorm:"type:varchar(64);not null"`       // Subscription type code.
	Status           string `gorm:"type:varchar(32);not null;index"` // Active, Pending, Expired, ...

	PaymentProfileID *uint64         `gorm:"index"`                       // Recurring payment profile, when any.
	PaymentProfile   *PaymentProfile `gorm:"foreignKey:PaymentProfileID"` // Recurring payment profile.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// SubscriptionType describes a purchasable subscription tier.
type SubscriptionType struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code     string         `gorm:"type:varchar(64);not null;uniqueIndex"` // Stable type code.
	Label    string         `gorm:"type:varchar(255);not null"`            // Display label.
	Price    float64        `gorm:"type:decimal(10,2);not null;default:0"` // Price per billing cycle.
	Features datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`      // Feature flags granted by the tier.
}

// PaymentProfile is a recurring billing agreement referenced by a subscription.
type PaymentProfile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	BillingFrequency int        `gorm:"not null;default:1"`        // Cycles per billing period.
	BillingPeriod    string     `gorm:"type:varchar(16);not null"` // Day, Week, Month or Year.
	NextBillingDate  *time.Time `gorm:"type:timestamptz"`          // Next scheduled charge.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
