// Package cli implements the image-tagger command line with cobra.
//
// Every subcommand resolves its configuration the same way: defaults, then
// the YAML file, then environment variables, then the persistent flags
// (--dir, --ext, --catalog, --throttle, --log-level). One-shot commands open
// the workspace, apply their change and close it, which blocks until every
// queued sidecar write has finished. The serve command runs the HTTP API and
// the Prometheus endpoint until SIGINT or SIGTERM.
package cli
