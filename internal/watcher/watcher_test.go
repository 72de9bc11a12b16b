package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"

	"image-tagger/internal/mediatypes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, dir string) <-chan struct{} {
	t.Helper()

	changes := make(chan struct{}, 16)
	w, err := New(Options{
		Dir:        dir,
		Extensions: mediatypes.ParseExtensions("png"),
		Debounce:   20 * time.Millisecond,
		OnChange:   func() { changes <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Start()
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	return changes
}

func expectChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func expectQuiet(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
		t.Fatal("unexpected change notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewMissingDirectory(t *testing.T) {
	if _, err := New(Options{Dir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("New() on a missing directory should fail")
	}
}

func TestWatcherDebouncesImageCreates(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, dir)

	for _, name := range []string{"a.png", "b.png", "c.PNG"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	expectChange(t, changes)
	expectQuiet(t, changes)
}

func TestWatcherIgnoresSidecars(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("cat"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectQuiet(t, changes)
}

func TestWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, dir)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	expectChange(t, changes)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{opts: Options{Extensions: mediatypes.ParseExtensions("png")}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"image create", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Create}, true},
		{"image remove", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Remove}, true},
		{"image rename", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Rename}, true},
		{"image write", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Write}, false},
		{"image chmod", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Chmod}, false},
		{"sidecar create", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
