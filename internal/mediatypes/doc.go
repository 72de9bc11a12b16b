// Package mediatypes describes which files in a directory count as images.
//
// It has no dependencies beyond the standard library so any package can
// import it without creating cycles.
//
// # Extension Sets
//
// The loader and the watcher share an ExtensionSet built from configuration:
//
//	exts := mediatypes.ParseExtensions("png, .JPG")
//	exts.Matches("IMG_001.jpg") // true
//	exts.Matches("img1.txt")    // false
//
// Matching is case-insensitive. An empty configuration yields the default
// set containing only ".png".
//
// # MIME Types
//
// GetMimeType maps a file name or extension to the MIME type reported by
// the image detail endpoint:
//
//	mediatypes.GetMimeType("cat.webp") // "image/webp"
package mediatypes
