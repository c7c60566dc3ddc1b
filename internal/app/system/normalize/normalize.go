// Package normalize centralizes the light canonicalization applied to
// user-entered identity fields before storage or comparison.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role canonicalizes a role string (student | organization | admin).
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status canonicalizes a status string (active | disabled).
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthMethod canonicalizes an auth method string (password | google).
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone trims a phone number; formatting inside is left alone.
func Phone(s string) string {
	return strings.TrimSpace(s)
}
