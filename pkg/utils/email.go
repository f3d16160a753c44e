package utils

import (
	"net/mail"
	"strings"
)

// NormalizeEmail lowercases and trims an email so it can be used as a
// case-insensitive lookup key against the CRM.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the input parses as a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms like `Bob <bob@x.com>`; forms send bare addresses.
	return addr.Address == email
}
