package tagstore

import (
	"path/filepath"
	"strings"
)

const (
	// SidecarExt is the extension of the per-image tag file.
	SidecarExt = ".txt"

	sidecarSeparator = ", "
)

// SidecarName returns the sidecar file name for an image: the image name
// with its extension replaced by ".txt".
func SidecarName(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + SidecarExt
}

// ParseSidecar splits sidecar content on commas and trims each entry.
// Empty entries and repeated tags are dropped, so an empty file yields no
// tags rather than a single empty one.
func ParseSidecar(data []byte) []string {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return []string{}
	}

	parts := strings.Split(content, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// FormatSidecar serializes a tag list the way it is stored on disk.
func FormatSidecar(tags []string) string {
	return strings.Join(tags, sidecarSeparator)
}
