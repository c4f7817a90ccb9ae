package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matsen/coviz/internal/coauthor"
	"github.com/matsen/coviz/internal/host"
	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/layoutcache"
	"github.com/matsen/coviz/internal/reference"
	"github.com/matsen/coviz/internal/storage"
	"github.com/matsen/coviz/internal/viz"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name    string
		years   string
		min     int
		max     int
		want    coauthor.Filter
		wantErr bool
	}{
		{"defaults", "", 1, 0, coauthor.Filter{MinShared: 1}, false},
		{"range", "2015:2024", 2, 50, coauthor.Filter{YearFrom: 2015, YearTo: 2024, MinShared: 2, MaxCoauthors: 50}, false},
		{"open end", "2020:", 1, 0, coauthor.Filter{YearFrom: 2020, MinShared: 1}, false},
		{"inverted", "2024:2015", 1, 0, coauthor.Filter{}, true},
		{"garbage", "recent", 1, 0, coauthor.Filter{}, true},
		{"negative max", "", 1, -1, coauthor.Filter{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFilter(tt.years, tt.min, tt.max)
			if tt.wantErr {
				if !errors.Is(err, coauthor.ErrInvalidFilter) {
					t.Errorf("buildFilter() error = %v, want ErrInvalidFilter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.html")
	if err := writeOutput(path, []byte("<html></html>")); err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("file contents = %q", data)
	}

	err = writeOutput(filepath.Join(t.TempDir(), "missing", "x.html"), nil)
	if err == nil || !strings.Contains(err.Error(), "writing") {
		t.Errorf("writeOutput() into missing dir error = %v", err)
	}
}

func TestResolveCenter(t *testing.T) {
	papers := []reference.Reference{
		{ID: "p1", Authors: []reference.Author{{ID: "42", Name: "Ann Lee"}, {Name: "Timothy C Yu"}}},
		{ID: "p2", Authors: []reference.Author{{Name: "Timothy C Yu"}}},
	}
	tests := []struct {
		arg   string
		want  reference.Author
		found bool
	}{
		{"42", reference.Author{ID: "42", Name: "Ann Lee"}, true},
		{"Yu, Tim", reference.Author{Name: "Timothy C Yu"}, true},
		{"99", reference.Author{}, false},
	}
	for _, tt := range tests {
		got, ok := resolveCenter(tt.arg, papers)
		if ok != tt.found || got != tt.want {
			t.Errorf("resolveCenter(%q) = %+v, %v; want %+v, %v", tt.arg, got, ok, tt.want, tt.found)
		}
	}
}

func TestReadPapersFile(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard)

	paperpile := filepath.Join(dir, "export.json")
	os.WriteFile(paperpile, []byte(`[
		{"_id": "1", "citekey": "A2024", "title": "A", "published": {"year": 2024}, "author": [{"first": "Ann", "last": "Lee"}, {"first": "Bo", "last": "Ng"}]},
		{"_id": "2", "citekey": "Bad", "title": "", "published": {"year": 2024}, "author": [{"last": "X"}]}
	]`), 0644)
	refs, err := readPapersFile(logger, paperpile)
	if err != nil {
		t.Fatalf("readPapersFile(json) error = %v", err)
	}
	if len(refs) != 1 || refs[0].Authors[1].Name != "Bo Ng" {
		t.Errorf("readPapersFile(json) = %+v", refs)
	}

	jsonl := filepath.Join(dir, "papers.jsonl")
	os.WriteFile(jsonl, []byte(`{"id":"p1","title":"P","authors":[{"name":"Ann Lee"}],"published":{"year":2020},"source":{"type":"jsonl"}}`+"\n"), 0644)
	refs, err = readPapersFile(logger, jsonl)
	if err != nil || len(refs) != 1 || refs[0].ID != "p1" {
		t.Errorf("readPapersFile(jsonl) = %+v, %v", refs, err)
	}

	saved := filepath.Join(dir, "saved.jsonl")
	if err := storage.WritePapers(saved, refs); err != nil {
		t.Fatal(err)
	}
	again, err := readPapersFile(logger, saved)
	if err != nil || len(again) != 1 || again[0].ID != refs[0].ID {
		t.Errorf("readPapersFile(saved) = %+v, %v", again, err)
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte(`not json`), 0644)
	if _, err := readPapersFile(logger, broken); !errors.Is(err, errDataInput) {
		t.Errorf("readPapersFile(broken) error = %v, want errDataInput", err)
	}
}

func coauthorGraph(coauthors ...string) *coauthor.Graph {
	g := &coauthor.Graph{CenterID: "c"}
	g.Nodes = append(g.Nodes, layout.Node[coauthor.Attrs]{ID: "c", IsCenter: true, PaperCount: 3})
	for _, id := range coauthors {
		g.Nodes = append(g.Nodes, layout.Node[coauthor.Attrs]{ID: id, PaperCount: 1})
		g.Edges = append(g.Edges, layout.Edge[[]string]{ID: "c-" + id, Source: "c", Target: id, Weight: 1})
	}
	return g
}

func TestLayoutGraph_StoredLayoutFollowsGraph(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "coviz.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	newRun := func() *app {
		cache, err := layoutcache.New(4, layoutcache.WithStore(db))
		if err != nil {
			t.Fatal(err)
		}
		return &app{logger: log.New(io.Discard), cache: cache, host: host.New()}
	}
	ctx := context.Background()
	f := coauthor.Filter{}

	tests := []struct {
		name    string
		graph   *coauthor.Graph
		wantHit bool
	}{
		{"first fetch", coauthorGraph("a", "b"), false},
		{"same papers", coauthorGraph("a", "b"), true},
		{"new coauthor", coauthorGraph("a", "b", "d"), false},
		{"coauthor dropped", coauthorGraph("a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newRun()
			defer a.host.Close()

			pos, hit, err := a.layoutGraph(ctx, tt.graph, f, 800, 600)
			if err != nil {
				t.Fatalf("layoutGraph() error = %v", err)
			}
			if hit != tt.wantHit {
				t.Errorf("cache hit = %v, want %v", hit, tt.wantHit)
			}
			if len(pos) != len(tt.graph.Nodes) {
				t.Errorf("got %d positions for %d nodes", len(pos), len(tt.graph.Nodes))
			}
			if _, err := viz.FromCoauthor(tt.graph, pos); err != nil {
				t.Errorf("FromCoauthor() error = %v", err)
			}
		})
	}
}
