package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"image-tagger/internal/logging"
	"image-tagger/internal/tagstore"
	"image-tagger/internal/workspace"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeOK writes v with a 200 status.
func writeOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, v)
}

// writeWorkspaceError maps workspace and store errors to HTTP statuses.
func writeWorkspaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tagstore.ErrEmptyTag):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tagstore.ErrUnknownImage):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tagstore.ErrTagExists):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, workspace.ErrNoCatalog):
		writeJSONError(w, "Catalog is not enabled", http.StatusNotFound)
	case errors.Is(err, workspace.ErrClosed):
		writeJSONError(w, "Service is shutting down", http.StatusServiceUnavailable)
	default:
		logging.Error("request failed: %v", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathVar returns an unescaped route variable. The router matches on the
// encoded path so that tags containing slashes survive.
func pathVar(r *http.Request, name string) string {
	raw := mux.Vars(r)[name]
	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return value
}

// queryInt parses a non-negative integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
