// Package reference defines the publication records coauthor graphs are built
// from.
package reference

// Reference is a published paper with its author list.
type Reference struct {
	ID    string `json:"id"`
	DOI   string `json:"doi,omitempty"`
	Title string `json:"title"`
	Venue string `json:"venue,omitempty"`

	Authors   []Author        `json:"authors"`
	Published PublicationDate `json:"published"`

	// Source records where the record was loaded from.
	Source ImportSource `json:"source"`
}

// PublicationDate represents a publication date with optional month and day.
type PublicationDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// ImportSource tracks where a reference was loaded from.
type ImportSource struct {
	Type string `json:"type"` // asta, jsonl, paperpile
	ID   string `json:"id"`   // Original ID from source system
}

// HasAuthor reports whether an author with the given key is on the paper.
func (r Reference) HasAuthor(key string) bool {
	for _, a := range r.Authors {
		if a.Key() == key {
			return true
		}
	}
	return false
}
