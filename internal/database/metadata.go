package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func lastSyncKey(dir string) string {
	return "last_sync:" + dir
}

// LastSync returns when dir was last synchronized. Returns zero time if never.
func (d *Database) LastSync(ctx context.Context, dir string) (time.Time, error) {
	value, err := d.GetMetadata(ctx, lastSyncKey(dir))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func (d *Database) setLastSync(ctx context.Context, dir string, t time.Time) error {
	return d.SetMetadata(ctx, lastSyncKey(dir), t.UTC().Format(time.RFC3339))
}
