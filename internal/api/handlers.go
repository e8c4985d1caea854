package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Weird-ragazzo/bandrec/internal/recommend"
	"github.com/Weird-ragazzo/bandrec/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"bands":   r.catalogService.Recommender().Len(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	http.ServeFile(w, req, filepath.Join(r.staticDir, "index.html"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRecommendError maps recommender errors onto HTTP statuses.
func writeRecommendError(w http.ResponseWriter, err error) {
	var schemaErr *recommend.SchemaError
	switch {
	case errors.Is(err, recommend.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recommend.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &schemaErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, recommend.ErrNotBuilt):
		writeError(w, http.StatusServiceUnavailable, "recommender is not ready")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
