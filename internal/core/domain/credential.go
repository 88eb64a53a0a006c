package domain

import (
	"fmt"
	"time"
)

// Credential represents one issued bearer token.
// A credential is replaced wholesale on every successful refresh;
// its fields are never mutated individually.
type Credential struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens. Optional.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenKind is typically "Bearer".
	TokenKind string `json:"token_kind"`
	// Scope is the granted scope string, if the provider reported one.
	Scope string `json:"scope,omitempty"`
	// LifetimeSeconds is the validity window length from IssuedAt.
	LifetimeSeconds int64 `json:"lifetime_seconds"`
	// IssuedAt is when the token was issued. Set exactly once: to the
	// exchange time for fresh tokens, or to the persisted value for
	// restored tokens. Never re-derived from a remote response.
	IssuedAt time.Time `json:"issued_at"`
}

// NewCredential constructs a freshly issued credential, stamping IssuedAt
// with the current wall clock. A negative lifetime is clamped to zero.
func NewCredential(accessToken, refreshToken, tokenKind, scope string, lifetimeSeconds int64) Credential {
	if lifetimeSeconds < 0 {
		lifetimeSeconds = 0
	}
	return Credential{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		TokenKind:       tokenKind,
		Scope:           scope,
		LifetimeSeconds: lifetimeSeconds,
		IssuedAt:        time.Now(),
	}
}

// RestoreCredential reconstructs a credential from persisted state.
// Unlike NewCredential, the issue timestamp must have been recorded at
// save time; a zero issuedAt fails the restore rather than silently
// defaulting to "now".
func RestoreCredential(
	accessToken, refreshToken, tokenKind, scope string,
	lifetimeSeconds int64, issuedAt time.Time,
) (Credential, error) {
	if accessToken == "" {
		return Credential{}, fmt.Errorf("restore credential: missing access token: %w", ErrInvalidInput)
	}
	if issuedAt.IsZero() {
		return Credential{}, fmt.Errorf("restore credential: missing issued-at timestamp: %w", ErrInvalidInput)
	}
	if lifetimeSeconds < 0 {
		return Credential{}, fmt.Errorf("restore credential: negative lifetime: %w", ErrInvalidInput)
	}
	return Credential{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		TokenKind:       tokenKind,
		Scope:           scope,
		LifetimeSeconds: lifetimeSeconds,
		IssuedAt:        issuedAt,
	}, nil
}

// ExpiresAt returns the instant the access token stops being usable.
func (c Credential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(time.Duration(c.LifetimeSeconds) * time.Second)
}

// IsExpiredAt reports whether the access token is unusable at the given time.
func (c Credential) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt())
}

// IsExpired reports whether the access token is unusable right now.
func (c Credential) IsExpired() bool {
	return c.IsExpiredAt(time.Now())
}

// ShouldRefreshAt reports whether a refresh is due at the given time.
// The skew window starts the refresh strictly before expiry so an
// in-flight save does not race the token's validity edge.
func (c Credential) ShouldRefreshAt(now time.Time, skew time.Duration) bool {
	return !now.Before(c.ExpiresAt().Add(-skew))
}

// HasRefreshToken reports whether a refresh token is available.
func (c Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
