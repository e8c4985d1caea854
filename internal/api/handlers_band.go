package api

import (
	"net/http"
)

func (r *Router) handleListBands(w http.ResponseWriter, req *http.Request) {
	bands, err := r.bandService.List(req.Context())
	if err != nil {
		r.logger.Error("listing bands", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bands": bands,
		"count": len(bands),
	})
}

func (r *Router) handleGetBand(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	b, err := r.bandService.GetByID(req.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "band not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (r *Router) handleListOrigins(w http.ResponseWriter, req *http.Request) {
	origins, err := r.bandService.DistinctOrigins(req.Context())
	if err != nil {
		r.logger.Error("listing origins", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"origins": origins})
}

func (r *Router) handleListGenres(w http.ResponseWriter, req *http.Request) {
	genres, err := r.bandService.DistinctGenres(req.Context())
	if err != nil {
		r.logger.Error("listing genres", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

// handleGetSchema reports the current feature schema: the origin and
// genre columns and the resulting dimensionality. The UI uses it to
// populate the preference form.
func (r *Router) handleGetSchema(w http.ResponseWriter, req *http.Request) {
	schema := r.catalogService.Schema()
	if schema == nil {
		writeError(w, http.StatusServiceUnavailable, "recommender is not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"origins":    schema.Origins(),
		"genres":     schema.Genres(),
		"dimensions": schema.Dim(),
	})
}
