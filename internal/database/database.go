package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"image-tagger/internal/logging"
	"image-tagger/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database is an SQLite catalog mirroring the sidecar tags of one or more
// image directories.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (creating if needed) the catalog at dbPath. The parent directory
// must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Catalog path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Catalog permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dir TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(dir, name)
	);

	CREATE INDEX IF NOT EXISTS idx_images_dir ON images(dir);

	-- Tag names are case-sensitive, matching sidecar semantics
	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS image_tags (
		image_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (image_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_image_tags_tag ON image_tags(tag_id);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the catalog file path.
func (d *Database) Path() string {
	return d.dbPath
}

// withTx runs fn in a transaction, rolling back when fn or the commit fails.
func (d *Database) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("rollback failed: %v", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// observeQuery starts timing operation and returns a func recording the outcome.
func observeQuery(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		recordQuery(operation, start, err)
	}
}

func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks catalog directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat catalog directory: %w", err)
	}

	logging.Debug("Catalog directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("catalog directory not writable: %w", err)
	}
	_ = os.Remove(testFile) // Explicitly ignore cleanup error

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Catalog file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("Catalog file %s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		}
	}

	return nil
}
