// Package catalog coordinates the band catalog lifecycle: importing the
// dataset, deriving the feature schema, and rebuilding the recommender.
// It is the single writer of recommender state; everything else only
// queries.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Weird-ragazzo/bandrec/internal/band"
	"github.com/Weird-ragazzo/bandrec/internal/dataset"
	"github.com/Weird-ragazzo/bandrec/internal/event"
	"github.com/Weird-ragazzo/bandrec/internal/feature"
	"github.com/Weird-ragazzo/bandrec/internal/recommend"
)

// Service owns the recommender and its feature schema, rebuilding both
// whenever the catalog changes.
type Service struct {
	bands       *band.Service
	importer    *dataset.Importer
	recommender *recommend.Recommender
	bus         *event.Bus
	logger      *slog.Logger
	datasetPath string

	mu     sync.RWMutex
	schema *feature.Schema
}

// NewService creates a catalog service. The event bus is optional.
func NewService(bands *band.Service, importer *dataset.Importer, rec *recommend.Recommender, bus *event.Bus, logger *slog.Logger, datasetPath string) *Service {
	return &Service{
		bands:       bands,
		importer:    importer,
		recommender: rec,
		bus:         bus,
		logger:      logger,
		datasetPath: datasetPath,
	}
}

// Recommender returns the shared recommender instance.
func (s *Service) Recommender() *recommend.Recommender {
	return s.recommender
}

// Schema returns the feature schema of the current build, or nil before
// the first Rebuild.
func (s *Service) Schema() *feature.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// Rebuild re-derives the feature schema from the stored catalog and
// rebuilds the similarity matrix. Called after every import.
func (s *Service) Rebuild(ctx context.Context) error {
	bands, err := s.bands.List(ctx)
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}
	if len(bands) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	schema := feature.SchemaFromBands(bands)
	table := recommend.TableFromBands(schema, bands)
	if err := s.recommender.Build(table); err != nil {
		return fmt.Errorf("building recommender: %w", err)
	}

	s.mu.Lock()
	s.schema = schema
	s.mu.Unlock()

	s.logger.Info("recommender rebuilt",
		slog.Int("bands", table.Len()),
		slog.Int("dimensions", schema.Dim()),
	)
	s.publish(event.Event{
		Type: event.RecommenderRebuilt,
		Data: map[string]any{"bands": table.Len(), "dimensions": schema.Dim()},
	})
	return nil
}

// Reload imports the dataset file and rebuilds the recommender. A failed
// import leaves the previous catalog and matrix serving.
func (s *Service) Reload(ctx context.Context) (*dataset.Stats, error) {
	stats, err := s.importer.Import(ctx, s.datasetPath)
	if err != nil {
		s.publish(event.Event{
			Type: event.DatasetImportError,
			Data: map[string]any{"path": s.datasetPath, "error": err.Error()},
		})
		return nil, err
	}

	if err := s.Rebuild(ctx); err != nil {
		return nil, err
	}

	s.publish(event.Event{
		Type: event.DatasetImported,
		Data: map[string]any{"path": stats.SourcePath, "bands": stats.BandCount},
	})
	return stats, nil
}

func (s *Service) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
