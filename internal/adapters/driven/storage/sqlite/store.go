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

	"github.com/ivrit-ai/explore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

// Store is a SQLite database holding the index build catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.explore/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".explore", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// CatalogStore returns a CatalogStore interface backed by this store.
func (s *Store) CatalogStore() driven.CatalogStore {
	return &catalogStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
		// Extract version number (e.g., "001_index_builds.up.sql" -> 1)
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Catalog Store ====================

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

// Record stores a catalog entry.
func (c *catalogStore) Record(ctx context.Context, build domain.IndexBuild) error {
	if build.ID == "" || build.Origin == "" {
		return fmt.Errorf("%w: build id and origin are required", domain.ErrInvalidInput)
	}
	if build.CreatedAt.IsZero() {
		build.CreatedAt = time.Now()
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO index_builds (id, path, fingerprint, origin, episodes, skipped, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, build.ID, build.Path, build.Fingerprint, string(build.Origin),
		build.Episodes, build.Skipped, build.Duration.Milliseconds(), build.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("recording index build: %w", err)
	}
	return nil
}

// LatestBuild returns the most recent entry for path.
func (c *catalogStore) LatestBuild(ctx context.Context, path string) (*domain.IndexBuild, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, path, fingerprint, origin, episodes, skipped, duration_ms, created_at
		FROM index_builds WHERE path = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, path)

	build, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index build for %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading index build: %w", err)
	}
	return build, nil
}

// ListBuilds returns up to limit entries, newest first.
func (c *catalogStore) ListBuilds(ctx context.Context, limit int) ([]domain.IndexBuild, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, path, fingerprint, origin, episodes, skipped, duration_ms, created_at
		FROM index_builds
		ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index builds: %w", err)
	}
	defer rows.Close()

	var builds []domain.IndexBuild //nolint:prealloc // size unknown from query
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning index build: %w", err)
		}
		builds = append(builds, *build)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index builds: %w", err)
	}
	return builds, nil
}

// Close closes the underlying store.
func (c *catalogStore) Close() error {
	return c.store.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (*domain.IndexBuild, error) {
	var (
		build      domain.IndexBuild
		origin     string
		durationMS int64
		createdAt  int64
	)
	if err := row.Scan(&build.ID, &build.Path, &build.Fingerprint, &origin,
		&build.Episodes, &build.Skipped, &durationMS, &createdAt); err != nil {
		return nil, err
	}
	build.Origin = domain.IndexOrigin(origin)
	build.Duration = time.Duration(durationMS) * time.Millisecond
	build.CreatedAt = time.Unix(0, createdAt)
	return &build, nil
}
