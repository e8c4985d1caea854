package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Weird-ragazzo/bandrec/internal/feature"
)

const defaultLimit = 10

func (r *Router) handleRecommendations(w http.ResponseWriter, req *http.Request) {
	bandID := req.URL.Query().Get("band_id")
	if bandID == "" {
		writeError(w, http.StatusBadRequest, "band_id is required")
		return
	}

	k, err := parseLimit(req.URL.Query().Get("k"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := r.catalogService.Recommender().Recommend(bandID, k)
	if err != nil {
		writeRecommendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"band_id":         bandID,
		"recommendations": recs,
	})
}

func (r *Router) handlePreferenceRecommendations(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Active      bool     `json:"active"`
		Origin      string   `json:"origin"`
		Genres      []string `json:"genres"`
		ExcludeBand string   `json:"exclude_band"`
		K           int      `json:"k"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.K == 0 {
		body.K = defaultLimit
	}

	schema := r.catalogService.Schema()
	if schema == nil {
		writeError(w, http.StatusServiceUnavailable, "recommender is not ready")
		return
	}

	vec, err := schema.EncodePreferences(feature.Preferences{
		Active: body.Active,
		Origin: body.Origin,
		Genres: body.Genres,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	recs, err := r.catalogService.Recommender().RecommendVector(vec, body.ExcludeBand, body.K)
	if err != nil {
		writeRecommendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": recs,
	})
}

// parseLimit parses the k query parameter, defaulting when absent.
// Non-numeric input is rejected here; non-positive values flow through
// to the recommender so its own validation answers consistently.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid k: %q", raw)
	}
	return k, nil
}
