package asta

import (
	"strconv"
	"strings"

	"github.com/matsen/coviz/internal/reference"
)

// ToReference converts an ASTA paper to a Reference keyed by its paper id.
func ToReference(p Paper) reference.Reference {
	ref := reference.Reference{
		ID:        p.PaperID,
		DOI:       NormalizeDOI(p.ExternalIDs.DOI),
		Title:     p.Title,
		Venue:     p.Venue,
		Authors:   make([]reference.Author, 0, len(p.Authors)),
		Published: parsePublicationDate(p.Year, p.PubDate),
		Source:    reference.ImportSource{Type: "asta", ID: p.PaperID},
	}
	for _, a := range p.Authors {
		ref.Authors = append(ref.Authors, ToAuthor(a))
	}
	return ref
}

// ToReferences converts papers, skipping entries without a paper id.
func ToReferences(papers []Paper) []reference.Reference {
	refs := make([]reference.Reference, 0, len(papers))
	for _, p := range papers {
		if p.PaperID == "" {
			continue
		}
		refs = append(refs, ToReference(p))
	}
	return refs
}

// ToAuthor converts an ASTA author.
func ToAuthor(a Author) reference.Author {
	return reference.Author{ID: a.AuthorID, Name: strings.TrimSpace(a.Name)}
}

// FindAuthor returns the author with the given id as named on papers, taking
// the most frequent spelling.
func FindAuthor(authorID string, refs []reference.Reference) (reference.Author, bool) {
	counts := make(map[string]int)
	best := ""
	for _, r := range refs {
		for _, a := range r.Authors {
			if a.ID != authorID || a.Name == "" {
				continue
			}
			counts[a.Name]++
			if counts[a.Name] > counts[best] || (counts[a.Name] == counts[best] && a.Name < best) {
				best = a.Name
			}
		}
	}
	if best == "" {
		return reference.Author{}, false
	}
	return reference.Author{ID: authorID, Name: best}, true
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	return strings.ToLower(doi)
}

// parsePublicationDate parses year and optional date string.
func parsePublicationDate(year int, dateStr string) reference.PublicationDate {
	pub := reference.PublicationDate{Year: year}

	if dateStr == "" {
		return pub
	}

	// Parse YYYY-MM-DD format
	parts := strings.Split(dateStr, "-")
	if y, err := strconv.Atoi(parts[0]); err == nil {
		pub.Year = y
	}
	if len(parts) >= 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			pub.Month = m
		}
	}
	if len(parts) >= 3 {
		if d, err := strconv.Atoi(parts[2]); err == nil && d >= 1 && d <= 31 {
			pub.Day = d
		}
	}

	return pub
}
