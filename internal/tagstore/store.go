package tagstore

import (
	"errors"
	"slices"
	"strings"

	"image-tagger/internal/natsort"
)

var (
	// ErrEmptyTag is returned when a tag is empty after trimming whitespace.
	ErrEmptyTag = errors.New("tag cannot be empty")
	// ErrTagExists is returned when an image already carries the tag.
	ErrTagExists = errors.New("tag already exists for this image")
	// ErrUnknownImage is returned for an image that is not in the store.
	ErrUnknownImage = errors.New("image not found")
)

// Store maps image identifiers to their ordered tag lists and tracks the
// vocabulary of every tag known in the session.
//
// A Store is not safe for concurrent use. Callers confine it to a single
// goroutine or serialize access themselves.
type Store struct {
	order []string
	tags  map[string][]string
	vocab map[string]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tags:  make(map[string][]string),
		vocab: make(map[string]struct{}),
	}
}

// SetImage registers an image with its tag list, replacing any list it had.
// Empty tags and duplicates are dropped; the first occurrence wins.
// Every kept tag joins the vocabulary.
func (s *Store) SetImage(image string, tags []string) {
	if _, ok := s.tags[image]; !ok {
		s.order = append(s.order, image)
	}

	list := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || slices.Contains(list, tag) {
			continue
		}
		list = append(list, tag)
		s.vocab[tag] = struct{}{}
	}
	s.tags[image] = list
}

// Images returns the image identifiers in the order they were registered.
func (s *Store) Images() []string {
	return slices.Clone(s.order)
}

// Len returns the number of images.
func (s *Store) Len() int {
	return len(s.order)
}

// HasImage reports whether the image is registered.
func (s *Store) HasImage(image string) bool {
	_, ok := s.tags[image]
	return ok
}

// Tags returns a copy of the image's tag list in insertion order.
// Unknown images yield nil.
func (s *Store) Tags(image string) []string {
	list, ok := s.tags[image]
	if !ok {
		return nil
	}
	return slices.Clone(list)
}

// HasTag reports whether the image carries tag.
func (s *Store) HasTag(image, tag string) bool {
	return slices.Contains(s.tags[image], tag)
}

// IndexOf returns the position of tag in the image's list, or -1.
func (s *Store) IndexOf(image, tag string) int {
	return slices.Index(s.tags[image], tag)
}

// Vocabulary returns every known tag in natural order.
func (s *Store) Vocabulary() []string {
	out := make([]string, 0, len(s.vocab))
	for tag := range s.vocab {
		out = append(out, tag)
	}
	natsort.Sort(out)
	return out
}

// VocabularySize returns the number of known tags.
func (s *Store) VocabularySize() int {
	return len(s.vocab)
}

// InVocabulary reports whether tag is known.
func (s *Store) InVocabulary(tag string) bool {
	_, ok := s.vocab[tag]
	return ok
}

// MatchVocabulary returns the known tags containing substr, ignoring case,
// in natural order. An empty substr returns the whole vocabulary.
func (s *Store) MatchVocabulary(substr string) []string {
	needle := strings.ToLower(strings.TrimSpace(substr))
	all := s.Vocabulary()
	if needle == "" {
		return all
	}

	out := all[:0]
	for _, tag := range all {
		if strings.Contains(strings.ToLower(tag), needle) {
			out = append(out, tag)
		}
	}
	return out
}

// AddTag appends tag to the image's list and adds it to the vocabulary.
// The tag is trimmed first. A nil error means the store changed.
func (s *Store) AddTag(image, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}

	list, ok := s.tags[image]
	if !ok {
		return ErrUnknownImage
	}
	if slices.Contains(list, tag) {
		return ErrTagExists
	}

	s.tags[image] = append(list, tag)
	s.vocab[tag] = struct{}{}
	return nil
}

// RemoveTag removes tag from the image's list and reports whether it was
// present. The vocabulary keeps the tag so it can be re-added later.
func (s *Store) RemoveTag(image, tag string) bool {
	list := s.tags[image]
	i := slices.Index(list, tag)
	if i < 0 {
		return false
	}
	s.tags[image] = slices.Delete(list, i, i+1)
	return true
}

// RenameTag replaces oldTag with newTag on every image that carries it and
// returns those images in store order. An image that already has newTag
// simply loses oldTag. The vocabulary drops oldTag and gains newTag even
// when no image was affected.
func (s *Store) RenameTag(oldTag, newTag string) ([]string, error) {
	newTag = strings.TrimSpace(newTag)
	if newTag == "" {
		return nil, ErrEmptyTag
	}
	if newTag == oldTag {
		return nil, nil
	}

	var affected []string
	for _, image := range s.order {
		list := s.tags[image]
		i := slices.Index(list, oldTag)
		if i < 0 {
			continue
		}
		list = slices.Delete(list, i, i+1)
		if !slices.Contains(list, newTag) {
			list = append(list, newTag)
		}
		s.tags[image] = list
		affected = append(affected, image)
	}

	delete(s.vocab, oldTag)
	s.vocab[newTag] = struct{}{}
	return affected, nil
}

// DeleteTag removes tag from every image and from the vocabulary and
// returns the images that carried it.
func (s *Store) DeleteTag(tag string) []string {
	var affected []string
	for _, image := range s.order {
		if s.RemoveTag(image, tag) {
			affected = append(affected, image)
		}
	}
	delete(s.vocab, tag)
	return affected
}
