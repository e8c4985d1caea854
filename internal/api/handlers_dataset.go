package api

import (
	"net/http"
)

func (r *Router) handleDatasetReload(w http.ResponseWriter, req *http.Request) {
	stats, err := r.catalogService.Reload(req.Context())
	if err != nil {
		r.logger.Error("dataset reload failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (r *Router) handleDatasetStats(w http.ResponseWriter, req *http.Request) {
	last, err := r.importer.LastImport(req.Context())
	if err != nil {
		r.logger.Error("reading import stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if last == nil {
		writeError(w, http.StatusNotFound, "no dataset has been imported")
		return
	}

	rec := r.catalogService.Recommender()
	writeJSON(w, http.StatusOK, map[string]any{
		"last_import": last,
		"bands":       rec.Len(),
		"dimensions":  rec.Dim(),
	})
}
