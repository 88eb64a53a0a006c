package driving

import (
	"context"

	"github.com/inklet-labs/marksync/internal/core/domain"
)

// Saver performs one save attempt against the remote copy of a document.
// A version conflict is not an error: it resolves to a SaveForked result.
// Non-conflict failures propagate verbatim with enough detail (classified
// outcome, optional retry-after) for the caller to decide on retry.
type Saver interface {
	Save(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error)
}
