package domain

import (
	"net/http"
	"strconv"
	"time"
)

// OutcomeKind enumerates the classifications of a completed remote call.
type OutcomeKind int

const (
	// OutcomeSuccess covers every 2xx status.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeUnauthorized means the credential is invalid or expired (401).
	// Never retried with the same credential.
	OutcomeUnauthorized
	// OutcomeNotFound means the target does not exist remotely (404).
	OutcomeNotFound
	// OutcomePreconditionFailed means a conditional write's version token
	// did not match the server-side version (412).
	OutcomePreconditionFailed
	// OutcomeRateLimited means the server throttled the call (429).
	OutcomeRateLimited
	// OutcomeUnavailable means the service is transiently down (503).
	OutcomeUnavailable
	// OutcomeOtherFailure covers any other non-2xx status.
	OutcomeOtherFailure
)

// String returns a short name for logging.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeNotFound:
		return "not_found"
	case OutcomePreconditionFailed:
		return "precondition_failed"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeOtherFailure:
		return "other_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classification of one completed remote call.
// It is the single source of truth consulted by the token manager and the
// save engine; no component re-interprets raw status codes independently.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	// RetryAfter is the server-requested backoff for rate-limited calls.
	// Zero when the Retry-After header was absent or unparseable.
	RetryAfter time.Duration
}

// Classify maps a completed remote call's status and headers to an Outcome.
// Pure function, no state.
func Classify(statusCode int, header http.Header) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return Outcome{Kind: OutcomeSuccess, StatusCode: statusCode}
	case statusCode == http.StatusUnauthorized:
		return Outcome{Kind: OutcomeUnauthorized, StatusCode: statusCode}
	case statusCode == http.StatusNotFound:
		return Outcome{Kind: OutcomeNotFound, StatusCode: statusCode}
	case statusCode == http.StatusPreconditionFailed:
		return Outcome{Kind: OutcomePreconditionFailed, StatusCode: statusCode}
	case statusCode == http.StatusTooManyRequests:
		return Outcome{
			Kind:       OutcomeRateLimited,
			StatusCode: statusCode,
			RetryAfter: parseRetryAfter(header),
		}
	case statusCode == http.StatusServiceUnavailable:
		return Outcome{Kind: OutcomeUnavailable, StatusCode: statusCode}
	default:
		return Outcome{Kind: OutcomeOtherFailure, StatusCode: statusCode}
	}
}

// Retryable reports whether the outcome is safe to retry with backoff
// without further domain knowledge.
func (o Outcome) Retryable() bool {
	return o.Kind == OutcomeRateLimited || o.Kind == OutcomeUnavailable
}

// parseRetryAfter extracts a backoff hint from the Retry-After header.
// Supports both delta-seconds and HTTP-date forms.
func parseRetryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
