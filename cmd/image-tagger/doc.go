// Package main provides the entry point for image-tagger.
//
// image-tagger manages tags for a directory of images. Each image's tags are
// stored next to it in a sidecar text file with the same base name and a .txt
// extension, holding a comma-separated list.
//
// # Application Lifecycle
//
// The serve command follows a structured initialization sequence:
//
//  1. Configuration Loading: Defaults, YAML file, environment, then flags
//  2. Workspace Load: Reads every sidecar in parallel and builds the vocabulary
//  3. Catalog (optional): Mirrors tags into SQLite for counts and lookups
//  4. Component Initialization:
//     - Persistence Queue: Writes sidecars in order on one goroutine
//     - Metrics Collector: Updates Prometheus gauges periodically
//     - Watcher (optional): Reloads when images are added or removed
//  5. HTTP Server Setup: Configures routes, middleware, and starts server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM and drains pending writes
//
// # Build Information
//
// Version information is injected at build time via ldflags:
//
//	go build -ldflags "-X image-tagger/internal/startup.Version=1.0.0 \
//	    -X image-tagger/internal/startup.Commit=abc123" ./cmd/image-tagger
package main
