package models

import "time"

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Email address.
	Password string `gorm:"type:text;not null"`             // Hashed password.
	Country  string `gorm:"type:varchar(2)"`                // ISO alpha-2 country code, empty when unset.

	NameChangedCount int        `gorm:"not null;default:0"` // Lifetime accepted username changes.
	NameChangedDate  *time.Time `gorm:"type:timestamptz"`   // Time of the last accepted username change.

	Active   bool `gorm:"not null;default:true"`  // Whether the user can sign in.
	Disabled bool `gorm:"not null;default:false"` // Explicit disable flag.

	APITokens    []APIToken    `gorm:"foreignKey:UserID"` // Related API tokens.
	AuthProfiles []AuthProfile `gorm:"foreignKey:UserID"` // Linked external identities.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
