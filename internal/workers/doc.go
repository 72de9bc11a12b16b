/*
Package workers sizes worker pools from the CPUs actually available to the process.

runtime.NumCPU reports host CPUs and ignores cgroup limits, while GOMAXPROCS
follows the container CPU limit. Pool sizes are derived from GOMAXPROCS:

	numWorkers := workers.ForIO(16)   // 2 per CPU, at most 16
	numWorkers := workers.ForMixed(8) // 1.5 per CPU, at most 8
	numWorkers := workers.Count(3, 0) // 3 per CPU, unbounded

Operators can pin the count with the LOAD_WORKERS environment variable. The
override is still clamped to the caller's limit.
*/
package workers
