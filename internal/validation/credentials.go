package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
	maxEmailLen    = 254
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{1,28}[a-zA-Z0-9]$`)

// emailRegex is deliberately permissive on the local part; the length and
// structural checks below catch the abusive cases.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

// ValidateUsername ensures the username is 3-30 characters of letters, digits,
// underscore or dash, starting and ending with a letter or digit.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-30 characters, use only letters, digits, '_' or '-', and start and end with a letter or digit")
	}
	return nil
}

// ValidateEmail performs a structural sanity check on an email address.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return errors.New("email must be at most 254 characters")
	}
	if strings.HasSuffix(email, ".") || !emailRegex.MatchString(email) {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePassword enforces the password policy: 12-128 characters with at
// least one uppercase letter, one lowercase letter, one digit and one
// special character.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < minPasswordLen {
		return errors.New("password must be at least 12 characters")
	}
	if len(runes) > maxPasswordLen {
		return errors.New("password must be at most 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
	}
	return nil
}
