package driving

import "context"

// TokenProvider hands out a usable access token for outbound remote calls.
// Implementations refresh transparently; concurrent callers during an
// active refresh all observe the same refresh outcome (single-flight).
type TokenProvider interface {
	// GetToken returns a usable access token. Returns
	// domain.ErrAuthRequired when the session is unauthenticated and a
	// fresh interactive authorization is needed.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated reports whether the session currently holds a
	// credential. It does not imply the access token is unexpired.
	IsAuthenticated() bool
}
