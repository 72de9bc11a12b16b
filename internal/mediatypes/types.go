package mediatypes

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtension is the image extension scanned when none is configured.
const DefaultExtension = ".png"

// MimeTypes maps image extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// ExtensionSet is a set of lowercase image extensions including the leading dot.
type ExtensionSet map[string]bool

// NormalizeExtension lowercases ext and adds a leading dot when missing.
// Returns "" for blank input.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NewExtensionSet builds a set from the given extensions. Blank entries are
// ignored; an empty result falls back to DefaultExtension.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if n := NormalizeExtension(ext); n != "" {
			set[n] = true
		}
	}
	if len(set) == 0 {
		set[DefaultExtension] = true
	}
	return set
}

// ParseExtensions parses a comma separated list such as "png, .JPG,webp".
func ParseExtensions(list string) ExtensionSet {
	return NewExtensionSet(strings.Split(list, ",")...)
}

// Matches reports whether name carries one of the set's extensions.
// The comparison is case-insensitive.
func (s ExtensionSet) Matches(name string) bool {
	return s[strings.ToLower(filepath.Ext(name))]
}

// List returns the extensions in sorted order.
func (s ExtensionSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

// String renders the set as a comma separated list.
func (s ExtensionSet) String() string {
	return strings.Join(s.List(), ",")
}

// GetMimeType returns the MIME type for a file name or extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = NormalizeExtension(name)
	}
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
