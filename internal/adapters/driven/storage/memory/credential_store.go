// Package memory provides an in-memory credential store for tests and
// embedding hosts that manage persistence themselves.
package memory

import (
	"context"
	"sync"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
)

var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps the credential in process memory.
type CredentialStore struct {
	mu   sync.RWMutex
	cred *domain.Credential
}

// NewCredentialStore creates an empty in-memory store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Load(_ context.Context) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return nil, domain.ErrCredentialNotFound
	}
	cred := *s.cred
	return &cred, nil
}

func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = &cred
	return nil
}

func (s *CredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = nil
	return nil
}
