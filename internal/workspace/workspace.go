package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"image-tagger/internal/database"
	"image-tagger/internal/filter"
	"image-tagger/internal/loader"
	"image-tagger/internal/logging"
	"image-tagger/internal/metrics"
	"image-tagger/internal/persist"
	"image-tagger/internal/tagstore"
)

var (
	// ErrNoCatalog is returned by catalog queries when no catalog is configured.
	ErrNoCatalog = errors.New("workspace: catalog not enabled")
	// ErrClosed is returned by operations on a closed workspace.
	ErrClosed = errors.New("workspace: closed")
)

// Options configures a workspace.
type Options struct {
	Dir  string
	Load loader.Options
	// Throttle is passed to the persistence queue.
	Throttle time.Duration
	// CatalogPath enables the SQLite mirror when non-empty.
	CatalogPath string
}

// TagState is a vocabulary entry with its membership on one image.
// Position is the tag's index in the image's list, or -1.
type TagState struct {
	Name     string `json:"name"`
	OnImage  bool   `json:"onImage"`
	Position int    `json:"position"`
}

// ImageDetail describes one image. CatalogTags holds the catalog's copy of
// the tags when a catalog is attached.
type ImageDetail struct {
	Name        string      `json:"name"`
	Index       int         `json:"index"`
	Tags        []string    `json:"tags"`
	Info        loader.Info `json:"info"`
	CatalogTags []string    `json:"catalogTags,omitempty"`
}

// Workspace owns the tag store of one directory. All store access is
// serialized by a single mutex; every mutation enqueues a snapshot of the
// affected images on the persistence queue.
type Workspace struct {
	mu sync.Mutex

	dir      string
	opts     Options
	store    *tagstore.Store
	info     map[string]loader.Info
	loadedAt time.Time
	closed   bool

	queue   *persist.Queue
	catalog *database.Database
}

// Open loads dir and starts the persistence worker.
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Dir, err)
	}

	res, err := loader.Load(ctx, dir, opts.Load)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		dir:  dir,
		opts: opts,
	}
	w.apply(res)

	var mirrors []persist.Sink
	if opts.CatalogPath != "" {
		catalog, err := database.New(ctx, opts.CatalogPath)
		if err != nil {
			return nil, err
		}
		w.catalog = catalog
		logging.Debug("Catalog opened at %s", catalog.Path())
		mirrors = append(mirrors, catalog.Sink(dir))
		w.syncCatalog(ctx)
	}

	w.queue = persist.New(persist.Sinks(persist.NewSidecarSink(dir), mirrors...), persist.Options{
		Throttle: opts.Throttle,
	})
	w.queue.Start()

	return w, nil
}

// Dir returns the absolute directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

func (w *Workspace) apply(res *loader.Result) {
	w.store = res.Store
	w.info = res.Info
	w.loadedAt = time.Now()
}

func (w *Workspace) syncCatalog(ctx context.Context) {
	if w.catalog == nil {
		return
	}
	if err := w.catalog.SyncDirectory(ctx, w.dir, w.store); err != nil {
		logging.Warn("Catalog sync failed for %s: %v", w.dir, err)
	}
}

// enqueue schedules a save of each image's current tags.
func (w *Workspace) enqueue(images ...string) {
	for _, image := range images {
		if err := w.queue.SaveTags(image, w.store.Tags(image)); err != nil {
			logging.Error("Failed to queue save for %s: %v", image, err)
		}
	}
}

func recordOp(op, status string) {
	metrics.StoreOperationsTotal.WithLabelValues(op, status).Inc()
}

// AddTag adds tag to image and schedules a save.
func (w *Workspace) AddTag(image, tag string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if err := w.store.AddTag(image, tag); err != nil {
		recordOp("add_tag", "rejected")
		return err
	}
	recordOp("add_tag", "success")
	w.enqueue(image)
	return nil
}

// RemoveTag removes tag from image. It reports false, without saving, when
// the image did not carry the tag.
func (w *Workspace) RemoveTag(image, tag string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false, ErrClosed
	}
	if !w.store.HasImage(image) {
		recordOp("remove_tag", "rejected")
		return false, tagstore.ErrUnknownImage
	}

	if !w.store.RemoveTag(image, tag) {
		recordOp("remove_tag", "noop")
		return false, nil
	}
	recordOp("remove_tag", "success")
	w.enqueue(image)
	return true, nil
}

// RenameTag renames oldTag everywhere and returns the affected images.
func (w *Workspace) RenameTag(oldTag, newTag string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	merge := oldTag != strings.TrimSpace(newTag) && w.store.InVocabulary(strings.TrimSpace(newTag))

	affected, err := w.store.RenameTag(oldTag, newTag)
	if err != nil {
		recordOp("rename_tag", "rejected")
		return nil, err
	}
	if len(affected) == 0 {
		recordOp("rename_tag", "noop")
		return []string{}, nil
	}

	if merge {
		recordOp("rename_tag", "merged")
		logging.Info("Merged tag %q into existing tag %q on %d images", oldTag, newTag, len(affected))
	} else {
		recordOp("rename_tag", "success")
		logging.Info("Renamed tag %q to %q on %d images", oldTag, newTag, len(affected))
	}
	w.enqueue(affected...)
	return affected, nil
}

// DeleteTag removes tag everywhere and returns the affected images.
func (w *Workspace) DeleteTag(tag string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	affected := w.store.DeleteTag(tag)
	if len(affected) == 0 {
		recordOp("delete_tag", "noop")
		return []string{}, nil
	}

	recordOp("delete_tag", "success")
	logging.Info("Deleted tag %q from %d images", tag, len(affected))
	w.enqueue(affected...)
	return affected, nil
}

// Images returns every image in natural order.
func (w *Workspace) Images() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Images()
}

// Filter evaluates a query against the store. A blank query returns every image.
func (w *Workspace) Filter(query string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return filter.Apply(w.store, query)
}

// Tags returns the tags of image.
func (w *Workspace) Tags(image string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.store.HasImage(image) {
		return nil, tagstore.ErrUnknownImage
	}
	return w.store.Tags(image), nil
}

// Image returns the tags and file information of image.
func (w *Workspace) Image(image string) (ImageDetail, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.store.HasImage(image) {
		return ImageDetail{}, tagstore.ErrUnknownImage
	}

	index := -1
	for i, name := range w.store.Images() {
		if name == image {
			index = i
			break
		}
	}

	return ImageDetail{
		Name:  image,
		Index: index,
		Tags:  w.store.Tags(image),
		Info:  w.info[image],
	}, nil
}

// Vocabulary returns every known tag in natural order.
func (w *Workspace) Vocabulary() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Vocabulary()
}

// MatchVocabulary returns the tags containing substr, ignoring case.
func (w *Workspace) MatchVocabulary(substr string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.MatchVocabulary(substr)
}

// Suggest returns up to limit vocabulary entries fuzzily matching query,
// best match first. A blank query returns the start of the vocabulary.
func (w *Workspace) Suggest(query string, limit int) []string {
	vocab := w.Vocabulary()

	if query == "" {
		if limit > 0 && len(vocab) > limit {
			vocab = vocab[:limit]
		}
		return vocab
	}

	suggestions := []string{}
	for _, m := range fuzzy.Find(query, vocab) {
		if limit > 0 && len(suggestions) >= limit {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}

// CatalogTags returns the tags the catalog holds for image.
func (w *Workspace) CatalogTags(ctx context.Context, image string) ([]string, error) {
	if w.catalog == nil {
		return nil, ErrNoCatalog
	}
	return w.catalog.ImageTags(ctx, w.dir, image)
}

// TagStates returns the vocabulary with a flag for each tag carried by image.
func (w *Workspace) TagStates(image string) ([]TagState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if image != "" && !w.store.HasImage(image) {
		return nil, tagstore.ErrUnknownImage
	}

	vocab := w.store.Vocabulary()
	states := make([]TagState, len(vocab))
	for i, tag := range vocab {
		pos := -1
		if image != "" {
			pos = w.store.IndexOf(image, tag)
		}
		states[i] = TagState{Name: tag, OnImage: pos >= 0, Position: pos}
	}
	return states, nil
}

// CatalogEnabled reports whether a catalog is attached.
func (w *Workspace) CatalogEnabled() bool {
	return w.catalog != nil
}

// TagCounts returns catalog tag usage for this directory.
func (w *Workspace) TagCounts(ctx context.Context) ([]database.TagCount, error) {
	if w.catalog == nil {
		return nil, ErrNoCatalog
	}
	return w.catalog.TagCounts(ctx, w.dir)
}

// CatalogSyncedAt returns when the catalog last mirrored a full load.
func (w *Workspace) CatalogSyncedAt(ctx context.Context) (time.Time, error) {
	if w.catalog == nil {
		return time.Time{}, ErrNoCatalog
	}
	return w.catalog.LastSync(ctx, w.dir)
}

// ImagesWithTag answers from the catalog which images carry tag.
func (w *Workspace) ImagesWithTag(ctx context.Context, tag string) ([]string, error) {
	if w.catalog == nil {
		return nil, ErrNoCatalog
	}
	return w.catalog.ImagesWithTag(ctx, w.dir, tag)
}

// Reload waits for pending saves, then rescans the directory.
func (w *Workspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if err := w.queue.Flush(ctx); err != nil {
		return fmt.Errorf("flush pending saves: %w", err)
	}

	res, err := loader.Load(ctx, w.dir, w.opts.Load)
	if err != nil {
		return err
	}
	w.apply(res)
	w.syncCatalog(ctx)
	return nil
}

// Flush blocks until every save scheduled so far has been written.
func (w *Workspace) Flush(ctx context.Context) error {
	return w.queue.Flush(ctx)
}

// Stats is a snapshot of workspace counters.
type Stats struct {
	Dir            string    `json:"dir"`
	TotalImages    int       `json:"totalImages"`
	TaggedImages   int       `json:"taggedImages"`
	VocabularySize int       `json:"vocabularySize"`
	PendingSaves   int       `json:"pendingSaves"`
	LoadedAt       time.Time `json:"loadedAt"`
}

// Stats returns current counters.
func (w *Workspace) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	tagged := 0
	for _, image := range w.store.Images() {
		if len(w.store.Tags(image)) > 0 {
			tagged++
		}
	}

	return Stats{
		Dir:            w.dir,
		TotalImages:    w.store.Len(),
		TaggedImages:   tagged,
		VocabularySize: w.store.VocabularySize(),
		PendingSaves:   w.queue.Pending(),
		LoadedAt:       w.loadedAt,
	}
}

// GetStats implements metrics.StatsProvider.
func (w *Workspace) GetStats() metrics.Stats {
	s := w.Stats()
	return metrics.Stats{
		TotalImages:    s.TotalImages,
		TaggedImages:   s.TaggedImages,
		VocabularySize: s.VocabularySize,
		PendingSaves:   s.PendingSaves,
	}
}

// Close drains the persistence queue and closes the catalog. It is safe to
// call more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.queue.Close()

	if w.catalog != nil {
		if cerr := w.catalog.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close catalog: %w", cerr))
		}
	}
	return err
}
