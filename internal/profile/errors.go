package profile

import (
	"errors"
	"fmt"
)

// ErrNameChangeLimit reports that a username change was refused because the
// account has used up its allowed number of changes.
var ErrNameChangeLimit = errors.New("profile: name change limit reached")

// ValidationError reports the first profile field that failed validation.
// Validation stops at the first failure, so a response carries one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile: invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
