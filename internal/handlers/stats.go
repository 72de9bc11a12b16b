package handlers

import (
	"net/http"
	"time"

	"image-tagger/internal/database"
	"image-tagger/internal/logging"
	"image-tagger/internal/workspace"
)

// StatsResponse is returned by GetStats.
type StatsResponse struct {
	workspace.Stats
	CatalogEnabled  bool                `json:"catalogEnabled"`
	CatalogSyncedAt *time.Time          `json:"catalogSyncedAt,omitempty"`
	TagCounts       []database.TagCount `json:"tagCounts,omitempty"`
}

// GetStats returns workspace counters and, with a catalog, tag usage counts.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Stats:          h.ws.Stats(),
		CatalogEnabled: h.ws.CatalogEnabled(),
	}

	if response.CatalogEnabled {
		counts, err := h.ws.TagCounts(r.Context())
		if err != nil {
			logging.Warn("failed to read catalog tag counts: %v", err)
		} else {
			response.TagCounts = counts
		}

		if synced, err := h.ws.CatalogSyncedAt(r.Context()); err != nil {
			logging.Warn("failed to read catalog sync time: %v", err)
		} else if !synced.IsZero() {
			response.CatalogSyncedAt = &synced
		}
	}

	writeOK(w, response)
}

// Reload flushes pending saves and rescans the directory.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Reload(r.Context()); err != nil {
		writeWorkspaceError(w, err)
		return
	}
	logging.Info("Directory reloaded via API")
	writeJSONStatus(w, "reloaded")
}
