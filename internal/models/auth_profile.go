package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuthProfile stores an external provider identity linked to a user.
// At most one row exists per (user, provider) pair.
type AuthProfile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index;uniqueIndex:idx_auth_profiles_user_provider"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`                                          // Owning user.

	AuthProvider string `gorm:"type:varchar(32);not null;uniqueIndex:idx_auth_profiles_user_provider"` // Provider name (TWITCH, GOOGLE, ...).
	AuthID       string `gorm:"type:varchar(191);not null;index"`                                      // Provider-assigned identity.

	AuthDetail datatypes.JSON `gorm:"type:jsonb"` // Raw provider payload captured at link time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
