package models

import "time"

// APIToken is a long-lived opaque credential owned by exactly one user.
// Tokens never expire on their own; they exist until explicitly revoked.
type APIToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                 // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`              // Owning user.
	Token  string `gorm:"type:text;not null;uniqueIndex"` // Opaque token value.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
