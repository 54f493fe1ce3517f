package utils

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// NormalizeDeviceToken converts a push token into its canonical form:
// whitespace and angle brackets removed, lower-case hex. Tokens copied from
// an NSData description ("<a591bde2 720d89d4 ...>") are accepted.
func NormalizeDeviceToken(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	token := b.String()
	if token == "" {
		return "", &ValidationError{Field: "token", Message: "Device token is required"}
	}
	if len(token)%2 != 0 {
		return "", &ValidationError{Field: "token", Message: "Device token must contain whole hex bytes"}
	}
	if _, err := hex.DecodeString(token); err != nil {
		return "", &ValidationError{Field: "token", Message: "Device token must be hexadecimal"}
	}
	return token, nil
}
