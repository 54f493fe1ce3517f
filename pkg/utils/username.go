package utils

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MinUsernameLength = 2
	MaxUsernameLength = 30
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateUsername validates username format
// Rules: 2-30 characters, letters, numbers, underscores, dots and dashes
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at least 2 characters"}
	}

	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 30 characters"}
	}

	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, underscores, dots and dashes"}
	}

	if !(unicode.IsLetter(rune(username[0])) || unicode.IsNumber(rune(username[0]))) {
		return &ValidationError{Field: "username", Message: "Username must start with a letter or number"}
	}

	return nil
}

// SanitizeUsername strips characters ValidateUsername would reject and caps
// the length, for usernames proposed by devices rather than typed by people.
func SanitizeUsername(proposed string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(proposed) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-') {
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), "_.-")
	if len(out) > MaxUsernameLength-5 {
		out = out[:MaxUsernameLength-5]
	}
	return out
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
