package handlers

import (
	"net/http"
	"strings"
)

const defaultSuggestLimit = 10

// RenameRequest carries the new name of a tag.
type RenameRequest struct {
	NewName string `json:"newName"`
}

// TagChangeResponse lists the images touched by a rename or delete.
type TagChangeResponse struct {
	Tag      string   `json:"tag"`
	NewName  string   `json:"newName,omitempty"`
	Affected []string `json:"affected"`
}

// TagImagesResponse is returned by GetImagesByTag.
type TagImagesResponse struct {
	Tag    string   `json:"tag"`
	Images []string `json:"images"`
}

// ListTags returns the vocabulary, optionally narrowed to tags containing
// the contains parameter, ignoring case.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	contains := r.URL.Query().Get("contains")

	var tags []string
	if contains == "" {
		tags = h.ws.Vocabulary()
	} else {
		tags = h.ws.MatchVocabulary(contains)
	}
	writeOK(w, tags)
}

// SuggestTags returns vocabulary entries fuzzily matching q.
func (h *Handlers) SuggestTags(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultSuggestLimit)
	if !ok {
		writeJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	writeOK(w, h.ws.Suggest(query, limit))
}

// GetTagStates returns the vocabulary with membership flags for an image.
func (h *Handlers) GetTagStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.ws.TagStates(r.URL.Query().Get("image"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeOK(w, states)
}

// RenameTag renames a tag on every image carrying it.
func (h *Handlers) RenameTag(w http.ResponseWriter, r *http.Request) {
	tag := pathVar(r, "tag")

	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	affected, err := h.ws.RenameTag(tag, req.NewName)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeOK(w, TagChangeResponse{Tag: tag, NewName: req.NewName, Affected: affected})
}

// DeleteTag removes a tag from every image carrying it.
func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag := pathVar(r, "tag")

	affected, err := h.ws.DeleteTag(tag)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeOK(w, TagChangeResponse{Tag: tag, Affected: affected})
}

// GetImagesByTag answers from the catalog which images carry a tag.
func (h *Handlers) GetImagesByTag(w http.ResponseWriter, r *http.Request) {
	tag := pathVar(r, "tag")

	images, err := h.ws.ImagesWithTag(r.Context(), tag)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	if images == nil {
		images = []string{}
	}
	writeOK(w, TagImagesResponse{Tag: tag, Images: images})
}
