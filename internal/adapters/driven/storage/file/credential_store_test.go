package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inklet-labs/marksync/internal/core/domain"
)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// Test that Load on a fresh store reports no credential.
func TestCredentialStore_Load_Absent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

// Test a save/load round trip preserves every field.
func TestCredentialStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cred, err := domain.RestoreCredential("at-1", "rt-1", "Bearer", "files.readwrite", 3600, issued)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), cred))
	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cred, *loaded)
}

// Test the credential file is written with owner-only permissions.
func TestCredentialStore_Save_Permissions(t *testing.T) {
	store := newTestStore(t)
	cred := domain.NewCredential("at-1", "rt-1", "Bearer", "", 3600)

	require.NoError(t, store.Save(context.Background(), cred))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// Test that a corrupt file is treated as an absent credential rather
// than surfacing a decode error.
func TestCredentialStore_Load_Corrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not json{"), 0600))

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

// Test that a record missing its issuance timestamp is rejected on load.
func TestCredentialStore_Load_MissingIssuedAt(t *testing.T) {
	store := newTestStore(t)
	raw := []byte(`{"access_token":"at-1","token_kind":"Bearer","lifetime_seconds":3600}`)
	require.NoError(t, os.WriteFile(store.Path(), raw, 0600))

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

// Test Delete removes the record and is idempotent.
func TestCredentialStore_Delete(t *testing.T) {
	store := newTestStore(t)
	cred := domain.NewCredential("at-1", "rt-1", "Bearer", "", 3600)
	require.NoError(t, store.Save(context.Background(), cred))

	require.NoError(t, store.Delete(context.Background()))
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	// Second delete: nothing to remove, still no error.
	assert.NoError(t, store.Delete(context.Background()))
}

// Test Watch fires when the credential file is rewritten externally.
func TestCredentialStore_Watch_FiresOnRewrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCredentialStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	require.NoError(t, store.Watch(ctx, func() { fired.Add(1) }))

	// Simulate an external process rotating the token.
	raw := []byte(`{"access_token":"at-2","token_kind":"Bearer","lifetime_seconds":3600,"issued_at":"2026-03-01T10:00:00Z"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credential.json"), raw, 0600))

	require.Eventually(t, func() bool {
		return fired.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

// Test Watch ignores unrelated files in the data directory.
func TestCredentialStore_Watch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCredentialStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	require.NoError(t, store.Watch(ctx, func() { fired.Add(1) }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
