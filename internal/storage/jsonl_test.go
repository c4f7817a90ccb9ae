package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/matsen/coviz/internal/reference"
)

func TestReadPapers_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	refs, err := ReadPapers(path)
	if err != nil {
		t.Fatalf("ReadPapers() error = %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("ReadPapers() returned %d refs, want 0", len(refs))
	}
}

func TestReadPapers_NonExistentFile(t *testing.T) {
	refs, err := ReadPapers("/nonexistent/path/papers.jsonl")
	if err != nil {
		t.Fatalf("ReadPapers() error = %v (should return nil for nonexistent file)", err)
	}
	if len(refs) != 0 {
		t.Errorf("ReadPapers() returned %v, want nil or empty slice", refs)
	}
}

func TestReadPapers_SkipsEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	content := `{"id":"A","title":"A","authors":[{"id":"1","name":"Ann"}],"published":{"year":2026},"source":{"type":"jsonl"}}

{"id":"B","title":"B","authors":[{"name":"Bob"}],"published":{"year":2025},"source":{"type":"jsonl"}}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	refs, err := ReadPapers(path)
	if err != nil {
		t.Fatalf("ReadPapers() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ReadPapers() returned %d refs, want 2", len(refs))
	}
	if refs[0].Authors[0].ID != "1" || refs[1].Authors[0].Name != "Bob" {
		t.Errorf("authors parsed as %+v, %+v", refs[0].Authors, refs[1].Authors)
	}
}

func TestReadPapers_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	content := `{"id":"valid","title":"Valid","authors":[],"published":{"year":2026},"source":{"type":"jsonl"}}
not valid json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := ReadPapers(path); err == nil {
		t.Error("ReadPapers() expected error for invalid JSON")
	}
}

func TestWritePapers_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	refs := []reference.Reference{
		{
			ID:        "p1",
			DOI:       "10.1234/x",
			Title:     "Phylogenetics at scale",
			Venue:     "Systematic Biology",
			Authors:   []reference.Author{{ID: "1", Name: "Ann"}, {Name: "Bob"}},
			Published: reference.PublicationDate{Year: 2024, Month: 5},
			Source:    reference.ImportSource{Type: "asta", ID: "p1"},
		},
		{ID: "p2", Title: "Second", Authors: []reference.Author{{ID: "1", Name: "Ann"}}, Published: reference.PublicationDate{Year: 2020}},
	}

	if err := WritePapers(path, refs); err != nil {
		t.Fatalf("WritePapers() error = %v", err)
	}
	read, err := ReadPapers(path)
	if err != nil {
		t.Fatalf("ReadPapers() error = %v", err)
	}
	if !reflect.DeepEqual(read, refs) {
		t.Errorf("round trip = %+v, want %+v", read, refs)
	}
}

func TestWritePapers_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	initial := []reference.Reference{{ID: "Old1", Title: "Old1"}, {ID: "Old2", Title: "Old2"}}
	if err := WritePapers(path, initial); err != nil {
		t.Fatalf("Initial WritePapers() error = %v", err)
	}
	if err := WritePapers(path, []reference.Reference{{ID: "New1", Title: "New1"}}); err != nil {
		t.Fatalf("Second WritePapers() error = %v", err)
	}

	read, err := ReadPapers(path)
	if err != nil {
		t.Fatalf("ReadPapers() error = %v", err)
	}
	if len(read) != 1 || read[0].ID != "New1" {
		t.Errorf("After overwrite got %+v, want only New1", read)
	}
}

func TestReadPapers_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad second line", "{\"id\":\"a\"}\n{\"id\":\n", "papers.jsonl:2:"},
		{"bad line after blank", "{\"id\":\"a\"}\n\nnope\n", "papers.jsonl:3:"},
		{"line too long", "{\"id\":\"" + strings.Repeat("x", maxPaperLine) + "\"}\n", "reading paper list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "papers.jsonl")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadPapers(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadPapers() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestReadPapers_ManyAuthors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	p := reference.Reference{ID: "big", Title: "Consortium paper"}
	for i := 0; i < 2000; i++ {
		p.Authors = append(p.Authors, reference.Author{ID: strconv.Itoa(i), Name: "Author Number " + strconv.Itoa(i)})
	}
	if err := WritePapers(path, []reference.Reference{p}); err != nil {
		t.Fatal(err)
	}
	read, err := ReadPapers(path)
	if err != nil {
		t.Fatalf("ReadPapers() error = %v", err)
	}
	if len(read) != 1 || len(read[0].Authors) != 2000 {
		t.Errorf("read %d papers, want 1 with 2000 authors", len(read))
	}
}
