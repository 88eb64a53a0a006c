package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates there is no usable credential; the host
	// must run the interactive authorization flow before retrying.
	ErrAuthRequired = errors.New("authentication required")

	// ErrCredentialNotFound indicates the persisted credential is absent.
	// Stores also report malformed or unreadable state with this error;
	// there is no partial recovery from a broken credential record.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrMalformedResponse indicates an unparseable remote response.
	// Treated as transient for retry purposes since it may be a proxy
	// or network artifact rather than a server decision.
	ErrMalformedResponse = errors.New("malformed remote response")

	// ErrUnversionedSaveDisabled indicates a save request without a
	// version token was rejected because host policy forbids writes that
	// cannot detect conflicts.
	ErrUnversionedSaveDisabled = errors.New("unversioned save disabled by policy")
)

// RemoteError represents a failed remote call with its classification.
// The Outcome carries the status code and, for rate-limited calls, the
// server's Retry-After hint.
type RemoteError struct {
	Op      string
	Outcome Outcome
}

func (e *RemoteError) Error() string {
	if e.Outcome.Kind == OutcomeRateLimited && e.Outcome.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (status %d, retry after %s)",
			e.Op, e.Outcome.Kind, e.Outcome.StatusCode, e.Outcome.RetryAfter)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Outcome.Kind, e.Outcome.StatusCode)
}

// OutcomeOf extracts the classified outcome from an error chain.
// Returns false for local failures that never reached the server.
func OutcomeOf(err error) (Outcome, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Outcome, true
	}
	return Outcome{}, false
}

// IsUnauthorized reports whether the error is a classified 401.
func IsUnauthorized(err error) bool {
	o, ok := OutcomeOf(err)
	return ok && o.Kind == OutcomeUnauthorized
}

// IsNotFound reports whether the error is a classified 404.
func IsNotFound(err error) bool {
	o, ok := OutcomeOf(err)
	return ok && o.Kind == OutcomeNotFound
}

// IsPreconditionFailed reports whether the error is a classified 412.
func IsPreconditionFailed(err error) bool {
	o, ok := OutcomeOf(err)
	return ok && o.Kind == OutcomePreconditionFailed
}

// IsTransient reports whether the error warrants a retry with backoff.
// Covers rate limiting, transient unavailability, unparseable responses,
// and local transport failures whose write outcome is unknown. An
// ambiguous outcome is never assumed successful.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return true
	}
	if o, ok := OutcomeOf(err); ok {
		return o.Retryable()
	}
	// Cancellation is reported as cancellation, never as a retryable failure.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Local failure: the request may never have left the device, or the
	// connection dropped mid-request. Either way the caller may retry.
	return !errors.Is(err, ErrInvalidInput) &&
		!errors.Is(err, ErrAuthRequired) &&
		!errors.Is(err, ErrUnversionedSaveDisabled)
}

// RetryAfterHint returns the server-requested backoff, if the error
// carries one.
func RetryAfterHint(err error) (Outcome, bool) {
	o, ok := OutcomeOf(err)
	if !ok || o.Kind != OutcomeRateLimited {
		return Outcome{}, false
	}
	return o, true
}
