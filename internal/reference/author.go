package reference

import "strings"

// Author is a paper author. ID is the provider's author id and may be empty
// for authors the provider could not disambiguate.
type Author struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Key returns the identity used to merge authors across papers: the id when
// present, otherwise the case-folded, whitespace-collapsed name.
func (a Author) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return "name:" + strings.ToLower(strings.Join(strings.Fields(a.Name), " "))
}
