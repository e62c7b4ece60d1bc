package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenURLBlockedSchemes(t *testing.T) {
	// These fail validation before any browser is spawned.
	tests := []struct {
		name string
		url  string
	}{
		{"javascript blocked", "javascript:alert(1)"},
		{"data blocked", "data:text/html,<script>"},
		{"file blocked", "file:///etc/passwd"},
		{"mailto blocked", "mailto:a@b.c"},
		{"empty url", ""},
		{"no scheme", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := OpenURL(tt.url)
			assert.Error(t, err)
		})
	}
}

func TestAllowedSchemes(t *testing.T) {
	assert.True(t, allowedSchemes["http"])
	assert.True(t, allowedSchemes["https"])
	assert.False(t, allowedSchemes["file"])
}
