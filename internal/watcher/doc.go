// Package watcher triggers a callback when images are added to, removed from
// or renamed within a directory. Bursts of events are debounced into a single
// call. Sidecar files and in-place image edits do not trigger it.
package watcher
