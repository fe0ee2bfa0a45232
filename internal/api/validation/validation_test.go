package validation_test

import (
	"strings"
	"testing"

	"github.com/hugh/taskdeck/internal/api/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@example.com",
		"user_name@sub.example.com",
	}
	for _, email := range valid {
		assert.True(t, validation.IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user @example.com",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, email := range invalid {
		assert.False(t, validation.IsValidEmail(email), email)
	}
}

func TestIsValidSubdomain(t *testing.T) {
	valid := []string{
		"acme",
		"acme-corp",
		"a",
		"tenant42",
		strings.Repeat("a", 63),
	}
	for _, sub := range valid {
		assert.True(t, validation.IsValidSubdomain(sub), sub)
	}

	invalid := []string{
		"",
		"Acme",
		"-acme",
		"acme-",
		"acme_corp",
		"acme.corp",
		strings.Repeat("a", 64),
	}
	for _, sub := range invalid {
		assert.False(t, validation.IsValidSubdomain(sub), sub)
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, validation.IsValidUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.True(t, validation.IsValidUUID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8"))
	assert.False(t, validation.IsValidUUID(""))
	assert.False(t, validation.IsValidUUID("not-a-uuid"))
	assert.False(t, validation.IsValidUUID("6ba7b810-9dad-11d1-80b4"))
}

func TestIsValidPassword(t *testing.T) {
	t.Run("accepts reasonable password", func(t *testing.T) {
		ok, msg := validation.IsValidPassword("password123")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("rejects short password", func(t *testing.T) {
		ok, msg := validation.IsValidPassword("short")
		assert.False(t, ok)
		assert.Contains(t, msg, "at least 8")
	})

	t.Run("rejects overly long password", func(t *testing.T) {
		ok, msg := validation.IsValidPassword(strings.Repeat("x", 129))
		assert.False(t, ok)
		assert.Contains(t, msg, "at most 128")
	})
}
