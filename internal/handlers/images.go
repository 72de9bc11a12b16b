package handlers

import (
	"net/http"
	"strings"

	"image-tagger/internal/logging"
)

// ImageListResponse is returned by ListImages.
type ImageListResponse struct {
	Query  string   `json:"query,omitempty"`
	Images []string `json:"images"`
	Total  int      `json:"total"`
}

// TagRequest carries a single tag name.
type TagRequest struct {
	Tag string `json:"tag"`
}

// ImageTagsResponse reports the tags of one image after a change.
type ImageTagsResponse struct {
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
	Changed bool     `json:"changed"`
}

// ListImages returns every image, or those matching the q filter query.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	images := h.ws.Filter(query)
	writeOK(w, ImageListResponse{
		Query:  query,
		Images: images,
		Total:  len(images),
	})
}

// GetImage returns the tags and file information of one image, with the
// catalog's view of its tags when a catalog is attached.
func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ws.Image(pathVar(r, "name"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}

	if h.ws.CatalogEnabled() {
		if tags, err := h.ws.CatalogTags(r.Context(), detail.Name); err != nil {
			logging.Warn("failed to read catalog tags of %s: %v", detail.Name, err)
		} else {
			detail.CatalogTags = tags
		}
	}
	writeOK(w, detail)
}

// AddImageTag adds the tag in the request body to an image.
func (h *Handlers) AddImageTag(w http.ResponseWriter, r *http.Request) {
	image := pathVar(r, "name")

	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.ws.AddTag(image, req.Tag); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	h.writeImageTags(w, image, true)
}

// RemoveImageTag removes a tag from an image. Removing a tag the image does
// not carry succeeds with changed set to false.
func (h *Handlers) RemoveImageTag(w http.ResponseWriter, r *http.Request) {
	image := pathVar(r, "name")

	removed, err := h.ws.RemoveTag(image, pathVar(r, "tag"))
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	h.writeImageTags(w, image, removed)
}

func (h *Handlers) writeImageTags(w http.ResponseWriter, image string, changed bool) {
	tags, err := h.ws.Tags(image)
	if err != nil {
		writeWorkspaceError(w, err)
		return
	}
	writeOK(w, ImageTagsResponse{Image: image, Tags: tags, Changed: changed})
}
