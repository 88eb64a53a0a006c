package domain

import (
	"fmt"
	"strings"
	"time"
)

// forkTimestampLayout is the wall-clock format embedded in fork filenames.
const forkTimestampLayout = "20060102-150405"

// forkMarker identifies artifacts created by conflict resolution.
const forkMarker = "MARKUP"

// SaveRequest describes one save attempt against a remote file.
type SaveRequest struct {
	// TargetID is the opaque remote identifier of the file being saved.
	TargetID string
	// ExpectedVersion is the version token captured when the file was
	// opened. Empty means conflicts cannot be detected and the write is
	// unconditional (degraded mode).
	ExpectedVersion string
	// ContainingFolderID locates the folder a conflict fork is created
	// in. Required only for forking.
	ContainingFolderID string
	// OriginalDisplayName is the file's human-readable name, used to
	// derive fork names.
	OriginalDisplayName string
	// Payload is the prepared binary content. Treated as immutable.
	Payload []byte
}

// CanDetectConflicts reports whether the request carries everything the
// engine needs for conditional-write conflict handling. Without both the
// version token and the containing folder the engine falls back to an
// unconditional write.
func (r SaveRequest) CanDetectConflicts() bool {
	return r.ExpectedVersion != "" && r.ContainingFolderID != ""
}

// Validate checks the request is well-formed enough to attempt.
func (r SaveRequest) Validate() error {
	if r.TargetID == "" {
		return fmt.Errorf("save request: missing target ID: %w", ErrInvalidInput)
	}
	if r.OriginalDisplayName == "" {
		return fmt.Errorf("save request: missing display name: %w", ErrInvalidInput)
	}
	if r.Payload == nil {
		return fmt.Errorf("save request: missing payload: %w", ErrInvalidInput)
	}
	return nil
}

// SaveStatus discriminates the two terminal save outcomes.
type SaveStatus int

const (
	// SaveOverwritten means the write succeeded against the same identity.
	SaveOverwritten SaveStatus = iota + 1
	// SaveForked means a version conflict was resolved by creating a
	// sibling artifact; both copies remain retrievable.
	SaveForked
)

// String returns a short name for logging.
func (s SaveStatus) String() string {
	switch s {
	case SaveOverwritten:
		return "overwritten"
	case SaveForked:
		return "forked"
	default:
		return "unknown"
	}
}

// SaveResult is the discriminated outcome of a completed save.
// ForkName is set only when Status is SaveForked.
type SaveResult struct {
	Status   SaveStatus
	ForkName string
}

// ForkName derives the filename for a conflict fork from the original
// display name, the device label, and the wall clock at the moment the
// conflict was detected. The extension is preserved verbatim, whatever
// its case.
func ForkName(displayName, deviceLabel string, at time.Time) string {
	stem, ext := splitExtension(displayName)
	return fmt.Sprintf("%s - %s - %s - %s%s",
		stem, forkMarker, deviceLabel, at.UTC().Format(forkTimestampLayout), ext)
}

// splitExtension splits a display name into stem and extension. The
// extension includes the leading dot; names without one (or dotfiles)
// yield an empty extension.
func splitExtension(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}
