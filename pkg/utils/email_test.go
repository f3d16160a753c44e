package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last+tag@sub.example.org"}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{"", "not-an-email", "a@", "@x.com", "Bob <bob@x.com>"}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}
