package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

var (
	validate    = validator.New()
	usernameTag = fmt.Sprintf("min=%d,max=%d", MinUsernameLength, MaxUsernameLength)
)

// ValidateUsername checks the length rule only, counted in runes. Usernames
// are stored and matched exactly as given, so no trimming or case folding
// happens here.
func ValidateUsername(username string) error {
	err := validate.Var(username, usernameTag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
		return &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength)}
	}
	return &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength)}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
