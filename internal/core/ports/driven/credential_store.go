package driven

import (
	"context"

	"github.com/inklet-labs/marksync/internal/core/domain"
)

// CredentialStore persists the session's serialized credential.
// The store is an external, serialized resource; the token manager treats
// "not found" and "found but malformed" identically (both reported as
// domain.ErrCredentialNotFound) with no partial recovery.
type CredentialStore interface {
	// Load reads the persisted credential.
	// Returns domain.ErrCredentialNotFound when absent or unreadable.
	Load(ctx context.Context) (*domain.Credential, error)

	// Save stores the credential, replacing any previous one.
	Save(ctx context.Context, cred domain.Credential) error

	// Delete removes the persisted credential. Deleting an absent
	// credential is not an error.
	Delete(ctx context.Context) error
}
