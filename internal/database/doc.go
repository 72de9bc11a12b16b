// Package database provides the SQLite tag catalog.
//
// The catalog mirrors the sidecar files of one or more image directories so
// tag statistics can be queried without rescanning the disk:
//   - SyncDirectory replaces a directory's rows after every load
//   - SaveImageTags updates one image and backs DirectorySink, the mirror
//     sink attached to the persistence queue
//   - TagCounts and ImagesWithTag answer per-directory queries
//
// Sidecar files remain the source of truth. The catalog uses WAL mode and
// every operation runs under a context timeout.
package database
