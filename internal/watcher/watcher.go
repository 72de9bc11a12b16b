package watcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"image-tagger/internal/logging"
	"image-tagger/internal/mediatypes"
	"image-tagger/internal/metrics"
)

// DefaultDebounce is the quiet period after the last event before OnChange runs.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Dir        string
	Extensions mediatypes.ExtensionSet
	Debounce   time.Duration
	// OnChange runs on the watcher goroutine once events settle.
	OnChange func()
}

// Watcher reports when images appear in or disappear from a directory.
type Watcher struct {
	opts     Options
	fs       *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher for opts.Dir. Call Start to begin delivering events.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Extensions == nil {
		opts.Extensions = mediatypes.NewExtensionSet()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(opts.Dir); err != nil {
		if cerr := fsw.Close(); cerr != nil {
			logging.Warn("close watcher: %v", cerr)
		}
		return nil, fmt.Errorf("watch %s: %w", opts.Dir, err)
	}

	return &Watcher{
		opts:     opts,
		fs:       fsw,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the event loop.
func (w *Watcher) Start() {
	logging.Info("Watching %s for image changes (debounce %v)", w.opts.Dir, w.opts.Debounce)
	go w.watchLoop()
}

// Stop ends the event loop and releases the underlying watcher. It must only
// be called after Start.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		<-w.done
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher error on %s: %v", w.opts.Dir, err)

		case <-fire:
			fire = nil
			logging.Debug("Image set changed in %s", w.opts.Dir)
			if w.opts.OnChange != nil {
				w.opts.OnChange()
			}

		case <-w.stopChan:
			return
		}
	}
}

// relevant reports whether event adds, removes or renames an image. Sidecar
// writes and image content changes are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.opts.Extensions.Matches(event.Name) {
		return false
	}

	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Remove):
		op = "remove"
	case event.Has(fsnotify.Rename):
		op = "rename"
	default:
		return false
	}

	metrics.WatcherEventsTotal.WithLabelValues(op).Inc()
	logging.Debug("Watcher %s: %s", op, event.Name)
	return true
}
