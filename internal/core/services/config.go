package services

import "time"

// Default tunables. Observed safe values for long-lived mobile sessions;
// hosts override them through Config.
const (
	// DefaultRefreshSkew is how long before expiry a refresh becomes due.
	// The window avoids racing expiry during a save.
	DefaultRefreshSkew = 300 * time.Second

	// DefaultRetryBudget is how many consecutive transient refresh
	// failures are tolerated before the session fails closed (and only
	// once the credential is also genuinely expired).
	DefaultRetryBudget = 3
)

// Config holds the tunable policy for one session's services.
type Config struct {
	// RefreshSkew is the pre-expiry refresh window. Zero means default.
	RefreshSkew time.Duration

	// RetryBudget bounds consecutive transient refresh failures.
	// Zero means default.
	RetryBudget int

	// AllowUnversionedSave permits save requests that carry no version
	// token (or no containing folder) to proceed as unconditional
	// writes. When false such requests fail with
	// domain.ErrUnversionedSaveDisabled instead of silently losing
	// conflict detection.
	AllowUnversionedSave bool
}

// DefaultConfig returns the configuration a host gets out of the box.
// Unversioned saves are permitted by default; hosts that must never
// write without conflict detection opt out explicitly.
func DefaultConfig() Config {
	return Config{
		RefreshSkew:          DefaultRefreshSkew,
		RetryBudget:          DefaultRetryBudget,
		AllowUnversionedSave: true,
	}
}

// withDefaults fills zero fields with the default tunables.
func (c Config) withDefaults() Config {
	if c.RefreshSkew <= 0 {
		c.RefreshSkew = DefaultRefreshSkew
	}
	if c.RetryBudget <= 0 {
		c.RetryBudget = DefaultRetryBudget
	}
	return c
}
