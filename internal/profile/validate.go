package profile

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/streamhub-dev/accountd/internal/country"
	"github.com/streamhub-dev/accountd/internal/db"
	"github.com/streamhub-dev/accountd/internal/models"
	"gorm.io/gorm"
)

// usernamePattern matches a valid login name: letters, digits and
// underscores, 3 to 20 characters.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// Validator checks profile updates against format rules and uniqueness
// constraints before any mutation happens.
type Validator struct {
	db *gorm.DB
}

// NewValidator constructs a profile Validator.
func NewValidator(conn *gorm.DB) *Validator {
	return &Validator{db: conn}
}

// UpdateInput carries the fields a profile update may change. Empty fields
// fall back to the user's current values before validation.
type UpdateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Country  string `json:"country"`
}

// Normalize fills empty input fields from the user's stored values and trims
// the rest. The returned input is what validation and the update apply.
func (in UpdateInput) Normalize(user *models.User) UpdateInput {
	out := UpdateInput{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Country:  strings.TrimSpace(in.Country),
	}
	if out.Username == "" {
		out.Username = user.Username
	}
	if out.Email == "" {
		out.Email = user.Email
	}
	if out.Country == "" {
		out.Country = user.Country
	}
	return out
}

// Validate checks the normalized input for the given user. The first failing
// field aborts with a ValidationError; later fields are not inspected.
func (v *Validator) Validate(ctx context.Context, user *models.User, in UpdateInput) error {
	if errUsername := v.validateUsername(ctx, user, in.Username); errUsername != nil {
		return errUsername
	}
	if errEmail := v.validateEmail(ctx, user, in.Email); errEmail != nil {
		return errEmail
	}
	return v.validateCountry(in.Country)
}

func (v *Validator) validateUsername(ctx context.Context, user *models.User, username string) error {
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Message: "must be 3 to 20 letters, digits or underscores"}
	}
	if strings.EqualFold(username, user.Username) {
		return nil
	}
	taken, errCount := v.taken(ctx, user.ID, "username", username)
	if errCount != nil {
		return fmt.Errorf("profile: check username: %w", errCount)
	}
	if taken {
		return &ValidationError{Field: "username", Message: "already in use"}
	}
	return nil
}

func (v *Validator) validateEmail(ctx context.Context, user *models.User, email string) error {
	addr, errParse := mail.ParseAddress(email)
	if errParse != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "not a valid email address"}
	}
	if strings.EqualFold(email, user.Email) {
		return nil
	}
	taken, errCount := v.taken(ctx, user.ID, "email", email)
	if errCount != nil {
		return fmt.Errorf("profile: check email: %w", errCount)
	}
	if taken {
		return &ValidationError{Field: "email", Message: "already in use"}
	}
	return nil
}

func (v *Validator) validateCountry(code string) error {
	if code == "" {
		return nil
	}
	if _, ok := country.Resolve(code); !ok {
		return &ValidationError{Field: "country", Message: "not a recognized country code"}
	}
	return nil
}

// taken reports whether another user already holds the value, compared
// case-insensitively.
func (v *Validator) taken(ctx context.Context, userID uint64, column, value string) (bool, error) {
	var count int64
	errCount := v.db.WithContext(ctx).
		Model(&models.User{}).
		Where(db.CaseInsensitiveEqualExpr(column), strings.ToLower(value)).
		Where("id <> ?", userID).
		Count(&count).Error
	if errCount != nil {
		return false, errCount
	}
	return count > 0, nil
}
