package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test the hostname provider never yields an empty label.
func TestHostnameProvider_NonEmpty(t *testing.T) {
	provider := NewHostnameProvider()

	assert.NotEmpty(t, provider.CurrentLabel())
}

// Test the static provider returns its configured label.
func TestStaticProvider(t *testing.T) {
	assert.Equal(t, "iPad-Shop-04", StaticProvider("iPad-Shop-04").CurrentLabel())
}

// Test the static provider falls back rather than returning "".
func TestStaticProvider_Empty(t *testing.T) {
	assert.Equal(t, "UnknownDevice", StaticProvider("").CurrentLabel())
}
