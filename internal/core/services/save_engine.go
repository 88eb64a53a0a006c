package services

import (
	"context"
	"fmt"
	"time"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/core/ports/driving"
	"github.com/inklet-labs/marksync/internal/logger"
)

// Ensure SaveEngine implements the interface.
var _ driving.Saver = (*SaveEngine)(nil)

// SaveEngine reconciles a locally edited binary payload with a remote copy
// that may have changed underneath it, without ever silently discarding
// another party's work.
//
// The write is conditional on the version token remembered at open time.
// On a version conflict the engine forks: it synthesizes a sibling name
// and creates a new artifact next to the original, so both the local and
// the conflicting remote content remain retrievable. The engine never
// merges payloads and never overwrites a detected conflict.
//
// The engine does not retry internally. Retrying a conditional write
// after a transient failure risks staleness that itself warrants a fresh
// conflict check, so retry policy belongs to the caller.
type SaveEngine struct {
	files  driven.FileStore
	device driven.DeviceLabelProvider
	cfg    Config
	clock  func() time.Time
}

// NewSaveEngine creates a save engine.
func NewSaveEngine(files driven.FileStore, device driven.DeviceLabelProvider, cfg Config) *SaveEngine {
	return &SaveEngine{
		files:  files,
		device: device,
		cfg:    cfg.withDefaults(),
		clock:  time.Now,
	}
}

// Save performs one save attempt and returns a discriminated result:
// Overwritten (same identity) or SavedAsFork (disjoint new identity).
// Requests without a version token or containing folder fall back to a
// documented unconditional write, gated by Config.AllowUnversionedSave.
func (e *SaveEngine) Save(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !req.CanDetectConflicts() {
		return e.saveUnconditional(ctx, req)
	}

	err := e.files.Replace(ctx, req.TargetID, req.ExpectedVersion, req.Payload)
	if err == nil {
		logger.Debug("save overwrote %s at version %s", req.TargetID, req.ExpectedVersion)
		return &domain.SaveResult{Status: domain.SaveOverwritten}, nil
	}
	if !domain.IsPreconditionFailed(err) {
		return nil, fmt.Errorf("conditional write to %s: %w", req.TargetID, err)
	}

	return e.fork(ctx, req)
}

// saveUnconditional is the degraded mode for requests that cannot detect
// conflicts. It is explicit, never an accidental downgrade: the request
// itself lacks what conflict detection needs, and host policy must allow it.
func (e *SaveEngine) saveUnconditional(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	if !e.cfg.AllowUnversionedSave {
		return nil, fmt.Errorf("save %s without version token: %w", req.TargetID, domain.ErrUnversionedSaveDisabled)
	}

	logger.Warn("saving %s without conflict detection (no version token)", req.TargetID)
	if err := e.files.Replace(ctx, req.TargetID, "", req.Payload); err != nil {
		return nil, fmt.Errorf("unconditional write to %s: %w", req.TargetID, err)
	}
	return &domain.SaveResult{Status: domain.SaveOverwritten}, nil
}

// fork resolves a detected version conflict by creating a sibling
// artifact. The create is unconditional and is not retried into a third
// name: a second conflict here is fatal.
func (e *SaveEngine) fork(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	name := domain.ForkName(req.OriginalDisplayName, e.device.CurrentLabel(), e.clock())
	logger.Info("version conflict on %s, forking as %q", req.TargetID, name)

	if err := e.files.CreateIn(ctx, req.ContainingFolderID, name, req.Payload); err != nil {
		return nil, fmt.Errorf("creating conflict copy %q: %w", name, err)
	}
	return &domain.SaveResult{Status: domain.SaveForked, ForkName: name}, nil
}
