package handlers

import (
	"net/http"
	"runtime"
	"time"

	"image-tagger/internal/startup"
)

const statusHealthy = "healthy"

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Dir     string `json:"dir"`

	Images       int `json:"images"`
	PendingSaves int `json:"pendingSaves"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.ws.Stats()

	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dir:          stats.Dir,
		Images:       stats.TotalImages,
		PendingSaves: stats.PendingSaves,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
