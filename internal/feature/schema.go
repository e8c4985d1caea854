// Package feature derives a fixed feature schema from the band catalog
// and encodes bands (or ad-hoc listener preferences) into vectors the
// recommender can compare. The layout is one active flag, a one-hot
// origin block, and a multi-hot genre block.
package feature

import (
	"fmt"
	"sort"

	"github.com/Weird-ragazzo/bandrec/internal/band"
)

// Schema fixes the dimensionality and column meaning of feature vectors.
// It is derived once per catalog import; vectors from different schemas
// are not comparable.
type Schema struct {
	origins     []string
	genres      []string
	originIndex map[string]int
	genreIndex  map[string]int
}

// NewSchema builds a schema from sorted distinct origin and genre values.
func NewSchema(origins, genres []string) *Schema {
	s := &Schema{
		origins:     append([]string(nil), origins...),
		genres:      append([]string(nil), genres...),
		originIndex: make(map[string]int, len(origins)),
		genreIndex:  make(map[string]int, len(genres)),
	}
	sort.Strings(s.origins)
	sort.Strings(s.genres)
	for i, o := range s.origins {
		s.originIndex[o] = i
	}
	for i, g := range s.genres {
		s.genreIndex[g] = i
	}
	return s
}

// SchemaFromBands derives a schema from the catalog itself.
func SchemaFromBands(bands []band.Band) *Schema {
	originSet := make(map[string]struct{})
	genreSet := make(map[string]struct{})
	for _, b := range bands {
		if b.Origin != "" {
			originSet[b.Origin] = struct{}{}
		}
		for _, g := range b.Genres {
			if g != "" {
				genreSet[g] = struct{}{}
			}
		}
	}

	origins := make([]string, 0, len(originSet))
	for o := range originSet {
		origins = append(origins, o)
	}
	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	return NewSchema(origins, genres)
}

// Dim returns the vector dimensionality: active + origins + genres.
func (s *Schema) Dim() int {
	return 1 + len(s.origins) + len(s.genres)
}

// Origins returns the origin columns in schema order.
func (s *Schema) Origins() []string {
	return append([]string(nil), s.origins...)
}

// Genres returns the genre columns in schema order.
func (s *Schema) Genres() []string {
	return append([]string(nil), s.genres...)
}

// Encode converts a band into its feature vector.
func (s *Schema) Encode(b band.Band) Vector {
	v := make(Vector, s.Dim())
	if b.Active {
		v[0] = 1
	}
	if i, ok := s.originIndex[b.Origin]; ok {
		v[1+i] = 1
	}
	for _, g := range b.Genres {
		if i, ok := s.genreIndex[g]; ok {
			v[1+len(s.origins)+i] = 1
		}
	}
	return v
}

// Preferences describes an ad-hoc listener profile to encode against the
// catalog schema, mirroring a band's attributes.
type Preferences struct {
	Active bool
	Origin string
	Genres []string
}

// EncodePreferences converts a listener profile into a feature vector.
// Unknown origins or genres simply contribute nothing; an all-unknown
// profile yields a zero vector, which is reported as an error since it
// cannot be ranked.
func (s *Schema) EncodePreferences(p Preferences) (Vector, error) {
	v := s.Encode(band.Band{
		Active: p.Active,
		Origin: p.Origin,
		Genres: p.Genres,
	})
	if Norm(v) == 0 {
		return nil, fmt.Errorf("preferences match no known attribute")
	}
	return v, nil
}
