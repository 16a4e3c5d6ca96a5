package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxDisplayNameLength = 50
	MaxBioLength         = 500
	MaxTitleLength       = 100
	MaxDescriptionLength = 2000
	MaxTagLength         = 32
	MaxTagsPerModel      = 10
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// ValidUsername reports whether v is 3-30 letters, digits or underscores.
func ValidUsername(v string) bool {
	return usernamePattern.MatchString(v)
}

// ValidEmail reports whether v is a bare address.
func ValidEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}

// NormalizeTag lowercases and trims a tag name. It returns "" when the result
// is empty or too long.
func NormalizeTag(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || utf8.RuneCountInString(v) > MaxTagLength {
		return ""
	}
	return v
}

// TooLong reports whether v has more than max characters.
func TooLong(v string, max int) bool {
	return utf8.RuneCountInString(v) > max
}
