package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/inklet-labs/marksync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/logger"
)

var _ driven.CredentialStore = (*Store)(nil)

// Store is a SQLite-backed credential store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.marksync/marksync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".marksync")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "marksync.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Load reads the stored credential. An empty table or an invalid record
// is reported as domain.ErrCredentialNotFound.
func (s *Store) Load(ctx context.Context) (*domain.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_kind, scope, lifetime_seconds, issued_at
		FROM credential WHERE id = 1
	`)

	var (
		accessToken, refreshToken, tokenKind, scope string
		lifetimeSeconds                             int64
		issuedAt                                    time.Time
	)
	if err := row.Scan(&accessToken, &refreshToken, &tokenKind, &scope, &lifetimeSeconds, &issuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	cred, err := domain.RestoreCredential(accessToken, refreshToken, tokenKind, scope, lifetimeSeconds, issuedAt)
	if err != nil {
		logger.Warn("stored credential invalid, treating as absent: %v", err)
		return nil, fmt.Errorf("restore credential: %w", domain.ErrCredentialNotFound)
	}
	return &cred, nil
}

// Save stores or replaces the credential.
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential
			(id, access_token, refresh_token, token_kind, scope, lifetime_seconds, issued_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_kind = excluded.token_kind,
			scope = excluded.scope,
			lifetime_seconds = excluded.lifetime_seconds,
			issued_at = excluded.issued_at,
			updated_at = excluded.updated_at
	`, cred.AccessToken, cred.RefreshToken, cred.TokenKind, cred.Scope,
		cred.LifetimeSeconds, cred.IssuedAt.UTC(), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Delete removes the credential. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credential WHERE id = 1"); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}
