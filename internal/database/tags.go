package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"image-tagger/internal/logging"
)

// syncTimeout bounds a full directory sync, which touches every image.
const syncTimeout = 30 * time.Second

// SyncDirectory replaces the catalog contents for dir with snap. Images no
// longer present are removed and tags nobody uses are pruned.
func (d *Database) SyncDirectory(ctx context.Context, dir string, snap Snapshot) error {
	done := observeQuery("sync_directory")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	images := snap.Images()
	present := make(map[string]bool, len(images))

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for pos, name := range images {
			present[name] = true

			var imageID int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO images (dir, name, position) VALUES (?, ?, ?)
				ON CONFLICT(dir, name) DO UPDATE SET
					position = excluded.position,
					updated_at = strftime('%s', 'now')
				RETURNING id
			`, dir, name, pos).Scan(&imageID)
			if err != nil {
				return fmt.Errorf("upsert image %s: %w", name, err)
			}

			if err := replaceImageTags(ctx, tx, imageID, snap.Tags(name)); err != nil {
				return err
			}
		}

		stale, err := staleImages(ctx, tx, dir, present)
		if err != nil {
			return err
		}
		for _, id := range stale {
			if _, err := tx.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id); err != nil {
				return fmt.Errorf("delete image %d: %w", id, err)
			}
		}
		if len(stale) > 0 {
			logging.Debug("Catalog removed %d images no longer in %s", len(stale), dir)
		}

		return pruneTags(ctx, tx)
	})
	done(err)
	if err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}

	if err := d.setLastSyncLocked(ctx, dir, time.Now()); err != nil {
		logging.Warn("Failed to record catalog sync time for %s: %v", dir, err)
	}

	logging.Debug("Catalog synchronized %d images for %s", len(images), dir)
	return nil
}

// SaveImageTags replaces the tag list of one image. New images are appended
// after the existing ones.
func (d *Database) SaveImageTags(ctx context.Context, dir, image string, tags []string) error {
	done := observeQuery("save_image_tags")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var imageID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO images (dir, name, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM images WHERE dir = ?))
			ON CONFLICT(dir, name) DO UPDATE SET updated_at = strftime('%s', 'now')
			RETURNING id
		`, dir, image, dir).Scan(&imageID)
		if err != nil {
			return fmt.Errorf("upsert image %s: %w", image, err)
		}

		if err := replaceImageTags(ctx, tx, imageID, tags); err != nil {
			return err
		}
		return pruneTags(ctx, tx)
	})
	done(err)
	return err
}

// ImageTags returns the stored tags of one image in sidecar order.
func (d *Database) ImageTags(ctx context.Context, dir, image string) ([]string, error) {
	done := observeQuery("image_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name
		FROM image_tags it
		JOIN images i ON i.id = it.image_id
		JOIN tags t ON t.id = it.tag_id
		WHERE i.dir = ? AND i.name = ?
		ORDER BY it.position
	`, dir, image)
	if err != nil {
		done(err)
		return nil, err
	}
	tags, err := scanStrings(rows)
	done(err)
	return tags, err
}

// TagCounts returns every tag used in dir with the number of images carrying
// it, most used first.
func (d *Database) TagCounts(ctx context.Context, dir string) ([]TagCount, error) {
	done := observeQuery("tag_counts")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name, COUNT(*) AS n
		FROM image_tags it
		JOIN images i ON i.id = it.image_id
		JOIN tags t ON t.id = it.tag_id
		WHERE i.dir = ?
		GROUP BY t.name
		ORDER BY n DESC, t.name
	`, dir)
	if err != nil {
		done(err)
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("error closing rows: %v", closeErr)
		}
	}()

	counts := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			done(err)
			return nil, err
		}
		counts = append(counts, tc)
	}

	err = rows.Err()
	done(err)
	return counts, err
}

// ImagesWithTag returns the images in dir carrying tag, in load order.
func (d *Database) ImagesWithTag(ctx context.Context, dir, tag string) ([]string, error) {
	done := observeQuery("images_with_tag")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT i.name
		FROM images i
		JOIN image_tags it ON it.image_id = i.id
		JOIN tags t ON t.id = it.tag_id
		WHERE i.dir = ? AND t.name = ?
		ORDER BY i.position
	`, dir, tag)
	if err != nil {
		done(err)
		return nil, err
	}

	names, err := scanStrings(rows)
	done(err)
	return names, err
}

// DirectorySink mirrors queued saves for one directory into the catalog.
type DirectorySink struct {
	db  *Database
	dir string
}

// Sink returns a persistence sink writing to dir's catalog entries.
func (d *Database) Sink(dir string) *DirectorySink {
	return &DirectorySink{db: d, dir: dir}
}

// Name labels the sink in metrics.
func (s *DirectorySink) Name() string { return "catalog" }

// Save replaces the catalog tags of image.
func (s *DirectorySink) Save(ctx context.Context, image string, tags []string) error {
	return s.db.SaveImageTags(ctx, s.dir, image, tags)
}

func (d *Database) setLastSyncLocked(ctx context.Context, dir string, t time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastSyncKey(dir), t.UTC().Format(time.RFC3339))
	return err
}

func replaceImageTags(ctx context.Context, tx *sql.Tx, imageID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM image_tags WHERE image_id = ?", imageID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	for pos, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING", tag); err != nil {
			return fmt.Errorf("create tag %q: %w", tag, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO image_tags (image_id, tag_id, position)
			SELECT ?, id, ? FROM tags WHERE name = ?
		`, imageID, pos, tag)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", tag, err)
		}
	}
	return nil
}

func staleImages(ctx context.Context, tx *sql.Tx, dir string, present map[string]bool) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, name FROM images WHERE dir = ?", dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("error closing rows: %v", closeErr)
		}
	}()

	var stale []int64
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		if !present[name] {
			stale = append(stale, id)
		}
	}
	return stale, rows.Err()
}

func pruneTags(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id NOT IN (SELECT DISTINCT tag_id FROM image_tags)")
	return err
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("error closing rows: %v", closeErr)
		}
	}()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
