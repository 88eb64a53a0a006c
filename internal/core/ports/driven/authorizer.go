package driven

import "context"

// InteractiveAuthorizer runs the interactive browser flow that produces an
// initial authorization grant. Single-shot: one call corresponds to one
// user-visible authorization round-trip, bounded by the caller's context.
type InteractiveAuthorizer interface {
	// ObtainGrant returns the authorization code and the PKCE verifier
	// that accompanied the authorization request.
	ObtainGrant(ctx context.Context) (code, verifier string, err error)
}
