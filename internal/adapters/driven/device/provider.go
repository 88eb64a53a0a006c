// Package device resolves the label identifying this device in fork
// filenames.
package device

import (
	"os"
	"strings"

	"github.com/inklet-labs/marksync/internal/core/ports/driven"
)

// fallbackLabel is used when the hostname cannot be determined. Fork names
// must always carry a device marker.
const fallbackLabel = "UnknownDevice"

var (
	_ driven.DeviceLabelProvider = (*HostnameProvider)(nil)
	_ driven.DeviceLabelProvider = StaticProvider("")
)

// HostnameProvider derives the device label from the machine hostname.
type HostnameProvider struct{}

// NewHostnameProvider creates a hostname-based label provider.
func NewHostnameProvider() *HostnameProvider {
	return &HostnameProvider{}
}

// CurrentLabel returns the hostname, trimmed of any domain suffix. It never
// returns an empty string.
func (p *HostnameProvider) CurrentLabel() string {
	name, err := os.Hostname()
	if err != nil {
		return fallbackLabel
	}
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackLabel
	}
	return name
}

// StaticProvider returns a fixed label, for hosts that configure the device
// name themselves.
type StaticProvider string

// CurrentLabel returns the configured label, or the fallback when empty.
func (p StaticProvider) CurrentLabel() string {
	if p == "" {
		return fallbackLabel
	}
	return string(p)
}
