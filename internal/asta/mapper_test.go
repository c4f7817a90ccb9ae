package asta

import (
	"reflect"
	"testing"

	"github.com/matsen/coviz/internal/reference"
)

func TestToReference(t *testing.T) {
	p := Paper{
		PaperID:     "abc",
		ExternalIDs: ExternalIDs{DOI: "https://doi.org/10.1/XYZ"},
		Title:       "Title",
		Venue:       "Venue",
		Year:        2020,
		PubDate:     "2021-02-30",
		Authors:     []Author{{AuthorID: "1", Name: " Ann "}, {Name: "Bob"}},
	}
	got := ToReference(p)
	want := reference.Reference{
		ID:        "abc",
		DOI:       "10.1/xyz",
		Title:     "Title",
		Venue:     "Venue",
		Authors:   []reference.Author{{ID: "1", Name: "Ann"}, {Name: "Bob"}},
		Published: reference.PublicationDate{Year: 2021, Month: 2, Day: 30},
		Source:    reference.ImportSource{Type: "asta", ID: "abc"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToReference() = %+v\nwant %+v", got, want)
	}
}

func TestToReferences_SkipsMissingIDs(t *testing.T) {
	refs := ToReferences([]Paper{{PaperID: "a"}, {Title: "no id"}, {PaperID: "b"}})
	if len(refs) != 2 {
		t.Errorf("got %d refs, want 2", len(refs))
	}
}

func TestFindAuthor(t *testing.T) {
	refs := []reference.Reference{
		{Authors: []reference.Author{{ID: "1", Name: "F. Matsen"}}},
		{Authors: []reference.Author{{ID: "1", Name: "Frederick Matsen"}, {ID: "2", Name: "Other"}}},
		{Authors: []reference.Author{{ID: "1", Name: "Frederick Matsen"}}},
	}
	a, ok := FindAuthor("1", refs)
	if !ok || a.Name != "Frederick Matsen" {
		t.Errorf("FindAuthor() = %+v, %v", a, ok)
	}
	if _, ok := FindAuthor("3", refs); ok {
		t.Error("FindAuthor() found an absent author")
	}
}

func TestParsePublicationDate(t *testing.T) {
	tests := []struct {
		year int
		date string
		want reference.PublicationDate
	}{
		{2020, "", reference.PublicationDate{Year: 2020}},
		{2020, "2019-11-05", reference.PublicationDate{Year: 2019, Month: 11, Day: 5}},
		{2020, "2019-13", reference.PublicationDate{Year: 2019}},
		{2020, "garbage", reference.PublicationDate{Year: 2020}},
	}
	for _, tt := range tests {
		if got := parsePublicationDate(tt.year, tt.date); got != tt.want {
			t.Errorf("parsePublicationDate(%d, %q) = %+v, want %+v", tt.year, tt.date, got, tt.want)
		}
	}
}
