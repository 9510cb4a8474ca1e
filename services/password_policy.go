package services

import (
	"fmt"
	"unicode"
)

// MinPasswordLength is the shortest password CreateUser accepts
const MinPasswordLength = 12

// ValidatePassword requires MinPasswordLength characters with upper and
// lower case letters, a number and a symbol. Failures are reported on the
// "password" field.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return NewValidationError("password", "must contain an uppercase letter")
	case !hasLower:
		return NewValidationError("password", "must contain a lowercase letter")
	case !hasNumber:
		return NewValidationError("password", "must contain a number")
	case !hasSpecial:
		return NewValidationError("password", "must contain a symbol")
	}
	return nil
}
