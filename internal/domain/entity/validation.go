package entity

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxUsernameLength = 150
	maxTitleLength    = 200
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)

// ValidateUsername checks the unique handle of a principal.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("must not exceed %d characters", maxUsernameLength),
		}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Message: "must contain only letters, digits and @/./+/-/_"}
	}
	return nil
}

// ValidateEmail checks that email is a single bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}

// ValidatePassword enforces the length bounds of a plain-text password.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}
	if len(password) > maxPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must not exceed %d bytes", maxPasswordLength),
		}
	}
	return nil
}

// ValidateArticleContent checks the journalist-writable fields of an article.
func ValidateArticleContent(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must not exceed %d characters", maxTitleLength),
		}
	}
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body", Message: "is required"}
	}
	return nil
}

// ValidateID checks that an identifier refers to a persisted row.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return &ValidationError{Field: field, Message: "must be a positive integer"}
	}
	return nil
}
