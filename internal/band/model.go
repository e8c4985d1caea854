package band

import (
	"encoding/json"
	"time"
)

// Band represents one entry of the band catalog. The catalog is imported
// from a static dataset and treated as read-only between imports.
type Band struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	Origin     string    `json:"origin"`
	Genres     []string  `json:"genres"`
	FormedYear int       `json:"formed_year,omitempty"`
	// Ordinal is the zero-based position of the band in the source
	// dataset. Listing follows this order so similarity tie-breaking
	// stays stable across imports.
	Ordinal   int       `json:"ordinal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalStringSlice encodes a string slice as a JSON array string.
func MarshalStringSlice(s []string) string {
	if s == nil {
		return "[]"
	}
	data, _ := json.Marshal(s)
	return string(data)
}

// UnmarshalStringSlice decodes a JSON array string into a string slice.
func UnmarshalStringSlice(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var result []string
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil
	}
	return result
}
