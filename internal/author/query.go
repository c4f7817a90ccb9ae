// Package author resolves a researcher from a name query when papers carry no
// author IDs.
package author

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matsen/coviz/internal/reference"
)

// Query represents a parsed author name query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author name into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.Join(strings.Fields(input[idx+1:]), " ")
		return Query{First: first, Last: last}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Query{First: first, Last: last}
}

// IsEmpty reports whether the query has no last name.
func (q Query) IsEmpty() bool {
	return q.Last == ""
}

// Matches checks if the query matches an author's display name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This lets "Tim Yu" match "Timothy C Yu" while "Yu" does not match "Yujia Chan".
func (q Query) Matches(a reference.Author) bool {
	if q.IsEmpty() {
		return false
	}
	name := ParseQuery(a.Name)
	if !strings.EqualFold(q.Last, name.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(name.First), strings.ToLower(q.First))
}

// Resolve finds the author the query names among the authors of refs. When
// several distinct authors match, the one on the most papers wins, then the
// shortest key. The returned name is the spelling used most often.
func Resolve(q Query, refs []reference.Reference) (reference.Author, bool) {
	type candidate struct {
		papers int
		names  map[string]int
		id     string
	}
	byKey := make(map[string]*candidate)
	for _, ref := range refs {
		onPaper := make(map[string]bool)
		for _, a := range ref.Authors {
			if !q.Matches(a) {
				continue
			}
			k := a.Key()
			c, ok := byKey[k]
			if !ok {
				c = &candidate{names: make(map[string]int), id: a.ID}
				byKey[k] = c
			}
			c.names[a.Name]++
			if !onPaper[k] {
				onPaper[k] = true
				c.papers++
			}
		}
	}
	if len(byKey) == 0 {
		return reference.Author{}, false
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(byKey[b].papers, byKey[a].papers); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	best := byKey[keys[0]]
	var name string
	for n, count := range best.names {
		if count > best.names[name] || (count == best.names[name] && n < name) {
			name = n
		}
	}
	return reference.Author{ID: best.id, Name: name}, true
}
