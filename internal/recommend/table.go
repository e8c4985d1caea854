package recommend

import (
	"github.com/Weird-ragazzo/bandrec/internal/band"
	"github.com/Weird-ragazzo/bandrec/internal/feature"
)

// Entry is one row of the feature table: a band identity plus its
// encoded feature vector.
type Entry struct {
	ID     string
	Name   string
	Vector feature.Vector
}

// Table is an ordered, immutable collection of entries sharing one
// feature schema. Order follows the source dataset and is the tie-break
// for equal similarity scores.
type Table struct {
	entries []Entry
}

// NewTable creates a table from entries, preserving their order.
func NewTable(entries []Entry) *Table {
	return &Table{entries: append([]Entry(nil), entries...)}
}

// TableFromBands encodes a band catalog against the given schema.
func TableFromBands(schema *feature.Schema, bands []band.Band) *Table {
	entries := make([]Entry, 0, len(bands))
	for _, b := range bands {
		entries = append(entries, Entry{
			ID:     b.ID,
			Name:   b.Name,
			Vector: schema.Encode(b),
		})
	}
	return NewTable(entries)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in table order.
func (t *Table) Entries() []Entry {
	return t.entries
}
