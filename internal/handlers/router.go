package handlers

import (
	"github.com/gorilla/mux"

	"image-tagger/internal/middleware"
)

// NewRouter registers every API route on a new router.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health and version
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Images
	api.HandleFunc("/images", h.ListImages).Methods("GET")
	api.HandleFunc("/images/{name}", h.GetImage).Methods("GET")
	api.HandleFunc("/images/{name}/tags", h.AddImageTag).Methods("POST")
	api.HandleFunc("/images/{name}/tags/{tag}", h.RemoveImageTag).Methods("DELETE")

	// Tags
	api.HandleFunc("/tags", h.ListTags).Methods("GET")
	api.HandleFunc("/tags/suggest", h.SuggestTags).Methods("GET")
	api.HandleFunc("/tags/state", h.GetTagStates).Methods("GET")
	api.HandleFunc("/tags/{tag}", h.RenameTag).Methods("PUT")
	api.HandleFunc("/tags/{tag}", h.DeleteTag).Methods("DELETE")
	api.HandleFunc("/tags/{tag}/images", h.GetImagesByTag).Methods("GET")

	// Directory
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/reload", h.Reload).Methods("POST")

	return r
}
