package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	reminderTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateMantraText checks a mantra used as a breakdown bucket key
func ValidateMantraText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ValidationError{Field: "mantra", Message: "mantra text is required"}
	}
	if len(text) > 300 {
		return ValidationError{Field: "mantra", Message: "mantra text must be at most 300 characters"}
	}
	return nil
}

// ValidateGroupName checks a group name
func ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "groupName", Message: "group name is required"}
	}
	if len(name) < 3 {
		return ValidationError{Field: "groupName", Message: "group name must be at least 3 characters"}
	}
	return nil
}

// ValidateAmount checks a chant increment from the manual-entry path.
// Non-positive amounts are rejected before any side effect happens.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ValidationError{Field: "amount", Message: "amount must be a positive number"}
	}
	return nil
}

// ValidateReminderTime checks a 24-hour "HH:MM" reminder time
func ValidateReminderTime(value string) error {
	if value == "" {
		return ValidationError{Field: "time", Message: "reminder time is required"}
	}
	if !reminderTimeRegex.MatchString(value) {
		return ValidationError{Field: "time", Message: "reminder time must be HH:MM in 24-hour format"}
	}
	return nil
}
