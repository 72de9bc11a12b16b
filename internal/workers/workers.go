package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "LOAD_WORKERS"

// Count returns the number of workers for a task with the given multiplier
// per available CPU. It respects container CPU limits via GOMAXPROCS.
//
// The limit parameter caps the worker count. Use 0 for no limit.
//
// Can be overridden with the LOAD_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU), such as
// reading sidecar files.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU), such as
// reading sidecars and decoding image headers in the same pass.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
