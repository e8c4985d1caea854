package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Weird-ragazzo/bandrec/internal/band"
	"github.com/Weird-ragazzo/bandrec/internal/catalog"
	"github.com/Weird-ragazzo/bandrec/internal/database"
	"github.com/Weird-ragazzo/bandrec/internal/dataset"
	"github.com/Weird-ragazzo/bandrec/internal/recommend"
)

const sampleCSV = `Band,Active,Origin,Genres
Tool,Yes,United States,"Progressive Metal, Alternative Metal"
Gojira,Yes,France,"Progressive Metal, Death Metal"
Soundgarden,No,United States,Grunge
`

type testEnv struct {
	router *Router
	bands  *band.Service
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	datasetPath := filepath.Join(t.TempDir(), "bands.csv")
	if err := os.WriteFile(datasetPath, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bands := band.NewService(db)
	importer := dataset.NewImporter(db, bands, logger)
	catalogSvc := catalog.NewService(bands, importer, recommend.New(), nil, logger, datasetPath)
	if _, err := catalogSvc.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}

	router := NewRouter(RouterDeps{
		BandService:    bands,
		CatalogService: catalogSvc,
		Importer:       importer,
		Logger:         logger,
		BasePath:       "",
		StaticDir:      t.TempDir(),
	})
	return &testEnv{router: router, bands: bands}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	e.router.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func (e *testEnv) bandID(t *testing.T, name string) string {
	t.Helper()
	b, err := e.bands.GetByName(context.Background(), name)
	if err != nil || b == nil {
		t.Fatalf("GetByName(%s): %v, %v", name, b, err)
	}
	return b.ID
}

func TestHandleHealth(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["bands"].(float64) != 3 {
		t.Errorf("bands = %v, want 3", body["bands"])
	}
}

func TestHandleListBands(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/bands", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Bands []band.Band `json:"bands"`
		Count int         `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 3 || len(body.Bands) != 3 {
		t.Fatalf("count = %d, bands = %d", body.Count, len(body.Bands))
	}
	// Dataset order.
	if body.Bands[0].Name != "Tool" {
		t.Errorf("first band = %q, want Tool", body.Bands[0].Name)
	}
}

func TestHandleGetBand(t *testing.T) {
	env := setupRouter(t)
	id := env.bandID(t, "Gojira")

	rec := env.do(t, http.MethodGet, "/api/v1/bands/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var b band.Band
	decode(t, rec, &b)
	if b.Name != "Gojira" || b.Origin != "France" {
		t.Errorf("band = %+v", b)
	}
}

func TestHandleGetBand_NotFound(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/bands/nonexistent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListOriginsAndGenres(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/bands/origins", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("origins status = %d, want 200", rec.Code)
	}
	var origins struct {
		Origins []string `json:"origins"`
	}
	decode(t, rec, &origins)
	if len(origins.Origins) != 2 || origins.Origins[0] != "France" {
		t.Errorf("origins = %v", origins.Origins)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/bands/genres", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("genres status = %d, want 200", rec.Code)
	}
	var genres struct {
		Genres []string `json:"genres"`
	}
	decode(t, rec, &genres)
	if len(genres.Genres) != 4 {
		t.Errorf("genres = %v", genres.Genres)
	}
}

func TestHandleGetSchema(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/schema", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Origins    []string `json:"origins"`
		Genres     []string `json:"genres"`
		Dimensions int      `json:"dimensions"`
	}
	decode(t, rec, &body)
	if len(body.Origins) != 2 || len(body.Genres) != 4 {
		t.Errorf("origins = %v, genres = %v", body.Origins, body.Genres)
	}
	if body.Dimensions != 7 {
		t.Errorf("dimensions = %d, want 7", body.Dimensions)
	}
}

func TestHandleRecommendations(t *testing.T) {
	env := setupRouter(t)
	id := env.bandID(t, "Tool")

	rec := env.do(t, http.MethodGet, "/api/v1/recommendations?band_id="+id+"&k=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		BandID          string                    `json:"band_id"`
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	decode(t, rec, &body)
	if len(body.Recommendations) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(body.Recommendations))
	}
	for _, r := range body.Recommendations {
		if r.ID == id {
			t.Error("query band appeared in its own recommendations")
		}
	}
	if body.Recommendations[0].Score < body.Recommendations[1].Score {
		t.Error("recommendations not sorted descending")
	}
}

func TestHandleRecommendations_Validation(t *testing.T) {
	env := setupRouter(t)
	id := env.bandID(t, "Tool")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing band_id", "/api/v1/recommendations?k=2", http.StatusBadRequest},
		{"unknown band", "/api/v1/recommendations?band_id=nope&k=2", http.StatusNotFound},
		{"zero k", "/api/v1/recommendations?band_id=" + id + "&k=0", http.StatusBadRequest},
		{"negative k", "/api/v1/recommendations?band_id=" + id + "&k=-1", http.StatusBadRequest},
		{"non-numeric k", "/api/v1/recommendations?band_id=" + id + "&k=lots", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleRecommendations_DefaultK(t *testing.T) {
	env := setupRouter(t)
	id := env.bandID(t, "Tool")

	rec := env.do(t, http.MethodGet, "/api/v1/recommendations?band_id="+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	decode(t, rec, &body)
	// Only 2 other bands exist; default k of 10 must not pad.
	if len(body.Recommendations) != 2 {
		t.Errorf("recommendations = %d, want 2", len(body.Recommendations))
	}
}

func TestHandlePreferenceRecommendations(t *testing.T) {
	env := setupRouter(t)

	payload := `{"active": true, "origin": "France", "genres": ["Progressive Metal"], "k": 3}`
	rec := env.do(t, http.MethodPost, "/api/v1/recommendations/preferences", strings.NewReader(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	decode(t, rec, &body)
	if len(body.Recommendations) != 3 {
		t.Fatalf("recommendations = %d, want 3", len(body.Recommendations))
	}
	if body.Recommendations[0].Name != "Gojira" {
		t.Errorf("top match = %q, want Gojira", body.Recommendations[0].Name)
	}
}

func TestHandlePreferenceRecommendations_ExcludesBand(t *testing.T) {
	env := setupRouter(t)

	payload := `{"active": true, "origin": "France", "genres": ["Progressive Metal"], "exclude_band": "Gojira"}`
	rec := env.do(t, http.MethodPost, "/api/v1/recommendations/preferences", strings.NewReader(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	decode(t, rec, &body)
	for _, r := range body.Recommendations {
		if r.Name == "Gojira" {
			t.Error("excluded band appeared in results")
		}
	}
}

func TestHandlePreferenceRecommendations_Errors(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unmatchable profile", `{"origin": "Atlantis", "genres": ["Vaporwave"]}`, http.StatusUnprocessableEntity},
		{"negative k", `{"origin": "France", "k": -5}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/recommendations/preferences", strings.NewReader(tt.payload))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleDatasetStats(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		LastImport *dataset.Stats `json:"last_import"`
		Bands      int            `json:"bands"`
		Dimensions int            `json:"dimensions"`
	}
	decode(t, rec, &body)
	if body.LastImport == nil || body.LastImport.BandCount != 3 {
		t.Errorf("last_import = %+v", body.LastImport)
	}
	if body.Bands != 3 || body.Dimensions != 7 {
		t.Errorf("bands = %d, dimensions = %d", body.Bands, body.Dimensions)
	}
}

func TestHandleDatasetReload(t *testing.T) {
	env := setupRouter(t)

	rec := env.do(t, http.MethodPost, "/api/v1/dataset/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var stats dataset.Stats
	decode(t, rec, &stats)
	if stats.BandCount != 3 {
		t.Errorf("BandCount = %d, want 3", stats.BandCount)
	}
}
