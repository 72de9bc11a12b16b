package filesystem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

type recordingObserver struct {
	mu         sync.Mutex
	operations []string
	errs       int
	attempts   int
	successes  int
	failures   int
	stale      int
}

func (r *recordingObserver) ObserveOperation(operation string, _ float64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, operation)
	if err != nil {
		r.errs++
	}
}

func (r *recordingObserver) ObserveRetryAttempt(string) { r.mu.Lock(); r.attempts++; r.mu.Unlock() }
func (r *recordingObserver) ObserveRetrySuccess(string) { r.mu.Lock(); r.successes++; r.mu.Unlock() }
func (r *recordingObserver) ObserveRetryFailure(string) { r.mu.Lock(); r.failures++; r.mu.Unlock() }
func (r *recordingObserver) ObserveStaleError(string)   { r.mu.Lock(); r.stale++; r.mu.Unlock() }

func withObserver(t *testing.T) *recordingObserver {
	t.Helper()
	obs := &recordingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })
	return obs
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetryRecoversFromStaleHandle(t *testing.T) {
	obs := withObserver(t)

	calls := 0
	got, err := withRetry(OpRead, "/nfs/a.txt", fastRetry(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ESTALE
		}
		return "ok", nil
	})

	if err != nil || got != "ok" {
		t.Fatalf("withRetry() = (%q, %v), want (ok, nil)", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if obs.stale != 2 || obs.attempts != 2 || obs.successes != 1 {
		t.Errorf("observer stale=%d attempts=%d successes=%d", obs.stale, obs.attempts, obs.successes)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	obs := withObserver(t)

	calls := 0
	_, err := withRetry(OpWrite, "/nfs/a.txt", fastRetry(), func() (int, error) {
		calls++
		return 0, syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + MaxRetries)", calls)
	}
	if obs.failures != 1 || obs.errs != 1 {
		t.Errorf("observer failures=%d errs=%d", obs.failures, obs.errs)
	}
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	withObserver(t)

	calls := 0
	_, err := withRetry(OpStat, "/x", fastRetry(), func() (bool, error) {
		calls++
		return false, os.ErrPermission
	})

	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWriteAndReadFileWithRetry(t *testing.T) {
	obs := withObserver(t)
	path := filepath.Join(t.TempDir(), "img1.txt")

	if err := WriteFileWithRetry(path, []byte("cat, dog"), 0o644, DefaultRetryConfig()); err != nil {
		t.Fatalf("WriteFileWithRetry() error = %v", err)
	}
	if err := WriteFileWithRetry(path, []byte("bird"), 0o644, DefaultRetryConfig()); err != nil {
		t.Fatalf("second WriteFileWithRetry() error = %v", err)
	}

	data, err := ReadFileWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("ReadFileWithRetry() error = %v", err)
	}
	if !bytes.Equal(data, []byte("bird")) {
		t.Errorf("content = %q, want overwrite", data)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.operations) != 3 {
		t.Errorf("operations = %v", obs.operations)
	}
}

func TestReadDirAndStatWithRetry(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadDirWithRetry(dir, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("ReadDirWithRetry() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.png" {
		t.Errorf("entries = %v", entries)
	}

	info, err := StatWithRetry(dir, DefaultRetryConfig())
	if err != nil || !info.IsDir() {
		t.Errorf("StatWithRetry() = (%v, %v)", info, err)
	}

	if _, err := ReadFileWithRetry(filepath.Join(dir, "missing.txt"), DefaultRetryConfig()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFileWithRetry(missing) error = %v, want ErrNotExist", err)
	}
}

func TestNoObserverIsSafe(t *testing.T) {
	SetObserver(nil)
	if _, err := StatWithRetry(t.TempDir(), fastRetry()); err != nil {
		t.Fatal(err)
	}
}
