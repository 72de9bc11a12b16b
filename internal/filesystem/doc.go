/*
Package filesystem provides resilient filesystem operations with automatic retry logic
for NFS stale file handle errors.

# Purpose

Image folders are often network mounts. This package wraps the operations the
tagger performs (os.Stat, os.ReadDir, os.ReadFile, os.WriteFile) with retry logic
for ESTALE (stale file handle) errors, which NFS returns when a file is accessed
during network issues or server-side changes.

# Usage

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

	data, err := filesystem.ReadFileWithRetry(sidecarPath, filesystem.DefaultRetryConfig())

	err := filesystem.WriteFileWithRetry(sidecarPath, []byte("cat, dog"), 0o644,
		filesystem.DefaultRetryConfig())

# Retry Behavior

Defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only ESTALE triggers retries. All other errors fail immediately.

# Metrics

Operation durations, errors and retries are reported to the Observer set with
SetObserver. The metrics package provides the Prometheus implementation; with
no observer set, nothing is recorded.
*/
package filesystem
