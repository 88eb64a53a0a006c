// Package file provides a JSON file-backed credential store.
//
// The store is a stand-in for the host platform's secure storage on
// targets without a keychain. The credential file is written atomically
// with 0600 permissions; a missing or unreadable file is reported as
// domain.ErrCredentialNotFound with no partial recovery.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/logger"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// credentialFile is the persisted wire format.
type credentialFile struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
	TokenKind       string    `json:"token_kind"`
	Scope           string    `json:"scope,omitempty"`
	LifetimeSeconds int64     `json:"lifetime_seconds"`
	IssuedAt        time.Time `json:"issued_at"`
}

// CredentialStore persists the credential as a JSON file.
type CredentialStore struct {
	mu   sync.Mutex
	path string
}

// NewCredentialStore creates a file-backed credential store.
// If dataDir is empty, defaults to ~/.marksync.
func NewCredentialStore(dataDir string) (*CredentialStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(home, ".marksync")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}

	return &CredentialStore{
		path: filepath.Join(dataDir, "credential.json"),
	}, nil
}

// Load reads the persisted credential. Absent and malformed records are
// both reported as domain.ErrCredentialNotFound.
func (s *CredentialStore) Load(_ context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("read credential file: %w", domain.ErrCredentialNotFound)
	}

	var record credentialFile
	if err := json.Unmarshal(raw, &record); err != nil {
		logger.Warn("credential file unreadable, treating as absent: %v", err)
		return nil, fmt.Errorf("decode credential file: %w", domain.ErrCredentialNotFound)
	}

	cred, err := domain.RestoreCredential(
		record.AccessToken, record.RefreshToken, record.TokenKind, record.Scope,
		record.LifetimeSeconds, record.IssuedAt,
	)
	if err != nil {
		logger.Warn("credential record invalid, treating as absent: %v", err)
		return nil, fmt.Errorf("restore credential: %w", domain.ErrCredentialNotFound)
	}
	return &cred, nil
}

// Save stores the credential atomically (write to a temp file in the
// same directory, then rename).
func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := credentialFile{
		AccessToken:     cred.AccessToken,
		RefreshToken:    cred.RefreshToken,
		TokenKind:       cred.TokenKind,
		Scope:           cred.Scope,
		LifetimeSeconds: cred.LifetimeSeconds,
		IssuedAt:        cred.IssuedAt,
	}

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

// Delete removes the credential file. Deleting an absent file is not an
// error.
func (s *CredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete credential file: %w", err)
	}
	return nil
}

// Path returns the credential file path.
func (s *CredentialStore) Path() string {
	return s.path
}

// Watch notifies onChange whenever another process rewrites the
// credential file, until ctx ends. A host whose helper processes refresh
// the token uses this to reload instead of refreshing with a rotated-out
// refresh token. Events for our own atomic saves are delivered too;
// reloads are cheap and idempotent, so they are not filtered.
func (s *CredentialStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: the credential file itself disappears on
	// every atomic rename.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch credential directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		name := filepath.Base(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.Debug("credential file changed (%s)", event.Op)
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("credential watcher error: %v", err)
			}
		}
	}()

	return nil
}
