// Package recommend ranks catalog entries by content similarity. It
// precomputes a symmetric cosine-similarity matrix over a fixed feature
// table and answers top-k queries against it deterministically.
package recommend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Weird-ragazzo/bandrec/internal/feature"
)

// Recommendation is one ranked result.
type Recommendation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Recommender holds the feature table and its precomputed similarity
// matrix. Build replaces both wholesale; queries only read, so the
// usual pattern is one Build at startup (and on dataset reload) with
// any number of concurrent Recommend calls.
type Recommender struct {
	mu     sync.RWMutex
	table  *Table
	index  map[string]int // entry ID -> table position
	matrix [][]float64
	cache  *resultCache
}

// New creates an empty Recommender. Build must be called before queries.
func New() *Recommender {
	return &Recommender{cache: newResultCache(resultCacheSize)}
}

// Build validates the table and computes the pairwise similarity matrix.
// Every entry must share the dimensionality of the first entry; a
// mismatch fails with a SchemaError and leaves the previous state
// untouched. Building twice with the same table yields the same matrix.
func (r *Recommender) Build(table *Table) error {
	if table == nil || table.Len() == 0 {
		return fmt.Errorf("feature table is empty")
	}

	entries := table.Entries()
	dim := len(entries[0].Vector)
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dim {
			return &SchemaError{Entry: e.Name, Dim: len(e.Vector), Want: dim}
		}
		if _, dup := index[e.ID]; dup {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		index[e.ID] = i
	}

	n := len(entries)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		// Self-similarity is maximal by definition, including for
		// zero vectors where cosine is undefined.
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			score, err := feature.Cosine(entries[i].Vector, entries[j].Vector)
			if err != nil {
				return fmt.Errorf("computing similarity %q/%q: %w", entries[i].Name, entries[j].Name, err)
			}
			matrix[i][j] = score
			matrix[j][i] = score
		}
	}

	r.mu.Lock()
	r.table = table
	r.index = index
	r.matrix = matrix
	r.mu.Unlock()
	r.cache.purge()

	return nil
}

// Recommend returns the k entries most similar to the query entry,
// sorted descending by score with ties broken by table order. The query
// itself is never included. If fewer than k other entries exist, all of
// them are returned.
func (r *Recommender) Recommend(queryID string, k int) ([]Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}

	if cached, ok := r.cache.get(queryID, k); ok {
		return cached, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return nil, ErrNotBuilt
	}
	qi, ok := r.index[queryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, queryID)
	}

	entries := r.table.Entries()
	results := make([]Recommendation, 0, len(entries)-1)
	for i, e := range entries {
		if i == qi {
			continue
		}
		results = append(results, Recommendation{ID: e.ID, Name: e.Name, Score: r.matrix[qi][i]})
	}
	results = rank(results, k)

	r.cache.put(queryID, k, results)
	return results, nil
}

// RecommendVector ranks the whole table against an ad-hoc feature
// vector, excluding at most one entry by name. Used for listener
// preference queries that are not themselves catalog entries.
func (r *Recommender) RecommendVector(v feature.Vector, excludeName string, k int) ([]Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return nil, ErrNotBuilt
	}

	entries := r.table.Entries()
	results := make([]Recommendation, 0, len(entries))
	for _, e := range entries {
		if excludeName != "" && e.Name == excludeName {
			continue
		}
		score, err := feature.Cosine(v, e.Vector)
		if err != nil {
			return nil, &SchemaError{Entry: e.Name, Dim: len(e.Vector), Want: len(v)}
		}
		results = append(results, Recommendation{ID: e.ID, Name: e.Name, Score: score})
	}
	return rank(results, k), nil
}

// Similarity returns the precomputed score between two entries.
func (r *Recommender) Similarity(idA, idB string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.table == nil {
		return 0, ErrNotBuilt
	}
	a, ok := r.index[idA]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, idA)
	}
	b, ok := r.index[idB]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, idB)
	}
	return r.matrix[a][b], nil
}

// Len returns the number of entries in the current table, or 0 before Build.
func (r *Recommender) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.table == nil {
		return 0
	}
	return r.table.Len()
}

// Dim returns the feature dimensionality of the current table, or 0 before Build.
func (r *Recommender) Dim() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.table == nil || r.table.Len() == 0 {
		return 0
	}
	return len(r.table.Entries()[0].Vector)
}

// rank sorts results descending by score and truncates to k. The sort is
// stable so equal scores keep table order.
func rank(results []Recommendation, k int) []Recommendation {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
