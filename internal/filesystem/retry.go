// Package filesystem provides utilities for filesystem operations with retry logic for NFS
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"image-tagger/internal/logging"
)

// Operation labels reported to the Observer.
const (
	OpStat    = "stat"
	OpReadDir = "readdir"
	OpRead    = "read"
	OpWrite   = "write"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// Check for ESTALE (stale file handle) - errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn until it succeeds, fails with an error other than
// ESTALE, or exhausts config.MaxRetries.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	start := time.Now()
	obs := observe()
	var lastErr error
	var zero T
	backoff := config.InitialBackoff

	record := func(err error) {
		if obs != nil {
			obs.ObserveOperation(op, time.Since(start).Seconds(), err)
		}
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				if obs != nil {
					obs.ObserveRetrySuccess(op)
				}
			}
			record(nil)
			return result, nil
		}

		lastErr = err

		// Only retry on NFS stale file handle errors
		if !isNFSStaleError(err) {
			record(err)
			return zero, err
		}

		if obs != nil {
			obs.ObserveStaleError(op)
		}

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			if obs != nil {
				obs.ObserveRetryAttempt(op)
			}
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			// Exponential backoff with cap
			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	if obs != nil {
		obs.ObserveRetryFailure(op)
	}
	record(lastErr)
	return zero, lastErr
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry(OpStat, path, config, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// ReadDirWithRetry performs os.ReadDir with retry logic for NFS stale file handle errors
func ReadDirWithRetry(path string, config RetryConfig) ([]os.DirEntry, error) {
	return withRetry(OpReadDir, path, config, func() ([]os.DirEntry, error) {
		return os.ReadDir(path)
	})
}

// ReadFileWithRetry performs os.ReadFile with retry logic for NFS stale file handle errors
func ReadFileWithRetry(path string, config RetryConfig) ([]byte, error) {
	return withRetry(OpRead, path, config, func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

// WriteFileWithRetry truncates and writes path with retry logic for NFS stale
// file handle errors. The file is opened, written and closed on every attempt.
func WriteFileWithRetry(path string, data []byte, perm os.FileMode, config RetryConfig) error {
	_, err := withRetry(OpWrite, path, config, func() (struct{}, error) {
		return struct{}{}, os.WriteFile(path, data, perm)
	})
	return err
}
