// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is layered by [LoadConfig]: built-in defaults, then an
// optional YAML file (the path given on the command line, or TAGGER_CONFIG),
// then environment variables. Command-line flags are applied on top by the
// caller. The following environment variables are supported:
//
//   - TAGGER_CONFIG: Path to a YAML configuration file
//   - TAGGER_DIR: Image directory to load (default: .)
//   - IMAGE_EXTENSIONS: Comma-separated image extensions (default: .png)
//   - SAVE_THROTTLE: Pause after each sidecar write as Go duration (default: 100ms, negative disables)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - CATALOG_PATH: SQLite catalog file; empty disables the catalog
//   - WATCH: Reload when images are added or removed (default: false)
//   - WATCH_DEBOUNCE: Quiet period before a watcher reload (default: 500ms)
//   - LOAD_WORKERS: Sidecar reader count, 0 for automatic
//   - PROBE_DIMENSIONS: Decode image headers for width and height (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// YAML keys use the same names in lower case, for example:
//
//	dir: /srv/dataset
//	image_extensions: png, jpg
//	save_throttle: 50ms
//	catalog_path: /var/lib/image-tagger/catalog.db
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogStartup]: Banner, system information and effective configuration
//   - [LogWorkspaceInit]: Directory load results and timing
//   - [LogCatalogInit]: Catalog location
//   - [LogWatcherInit]: Watcher state
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
