// Package metrics provides Prometheus instrumentation for the image tagger.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "image_tagger_".
//
// # Metric Categories
//
// ## Tag Store
//
//   - StoreOperationsTotal: mutations by operation and outcome
//   - ImagesTotal, TaggedImagesTotal, VocabularySize: gauges refreshed by
//     the Collector from a StatsProvider
//
// ## Filter
//
//   - FilterEvaluationsTotal / FilterEvaluationDuration by branch (and, or)
//   - FilterResultSize: histogram of result sizes
//
// ## Persistence Queue
//
//   - SaveQueueDepth: tasks waiting for the worker
//   - SavesTotal / SaveDuration by sink (sidecar, catalog) and outcome
//   - SaveWorkerRunning: 1 while the worker goroutine is alive
//
// ## Loader and Watcher
//
//   - LoadsTotal, LoadDuration, LoadSidecarErrors, LoadLastTimestamp
//   - WatcherEventsTotal by fsnotify operation
//
// ## Catalog and Filesystem
//
//   - DBQueryTotal / DBQueryDuration for the SQLite catalog
//   - Filesystem* counters for stale NFS handle retries, fed through the
//     filesystem.Observer returned by NewFilesystemObserver
//
// ## HTTP
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
package metrics
