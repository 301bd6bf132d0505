package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"regular email", "john.doe@example.com"},
		{"another email", "sarah@company.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnonymizeEmail(tt.email)
			assert.NotEmpty(t, result)
			assert.NotContains(t, result, tt.email)
			assert.Contains(t, result, "user:")
			// Same input always hashes to the same value
			assert.Equal(t, result, AnonymizeEmail(tt.email))
		})
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestErr(t *testing.T) {
	// Nil error should produce an empty group that slog omits
	attr := Err(nil)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())

	attr = Err(assert.AnError)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, assert.AnError.Error(), attr.Value.String())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))

	result := SanitizeToken("sk-supersecretvalue")
	assert.NotContains(t, result, "supersecret")
	assert.Contains(t, result, "19 chars")
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{"valid email", "user@example.com", "example.com"},
		{"empty string", "", ""},
		{"no at sign", "not-an-email", ""},
		{"multiple at signs", "a@b@c.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.email))
		})
	}
}
