package recommend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the query entry is not in the table.
var ErrNotFound = errors.New("entry not found")

// ErrInvalidLimit is returned when the requested result count is not positive.
var ErrInvalidLimit = errors.New("limit must be positive")

// ErrNotBuilt is returned when Recommend is called before Build.
var ErrNotBuilt = errors.New("recommender not built")

// SchemaError reports a feature table whose entries disagree on
// dimensionality.
type SchemaError struct {
	Entry string
	Dim   int
	Want  int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("entry %q has dimension %d, want %d", e.Entry, e.Dim, e.Want)
}
