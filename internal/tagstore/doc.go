// Package tagstore holds the in-memory tag index for one image directory.
//
// Each image owns an ordered list of free-form, case-sensitive tags with no
// duplicates. The store also keeps a vocabulary: every tag seen at load
// time plus every tag added since. Removing a tag from a single image
// leaves it in the vocabulary so it can be picked again; only DeleteTag and
// RenameTag shrink the vocabulary.
//
// # Sidecar Files
//
// Tags are persisted next to each image in a text file with the same base
// name and a ".txt" extension:
//
//	beach.png  ->  beach.txt  ->  "sunset, sand, family"
//
// ParseSidecar and FormatSidecar convert between that form and a tag list.
// Parsing drops empty entries, so an empty file means "no tags".
//
// # Concurrency
//
// A Store is not safe for concurrent use. The workspace package serializes
// access and hands copies of tag lists to the persistence queue.
package tagstore
