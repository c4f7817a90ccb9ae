// Package coauthor turns a researcher's publication list into a coauthor
// graph ready for layout.
package coauthor

import (
	"cmp"
	"slices"

	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/reference"
)

// Attrs is the passthrough data carried on each node.
type Attrs struct {
	Name   string `json:"name"`
	Shared int    `json:"shared"`
}

// Graph is the coauthor network around one researcher. Edge payloads are the
// ids of the papers an edge stands for.
type Graph struct {
	CenterID string                  `json:"centerId"`
	Nodes    []layout.Node[Attrs]    `json:"nodes"`
	Edges    []layout.Edge[[]string] `json:"edges"`
	Papers   int                     `json:"papers"`
}

// Request wraps the graph in a layout request for the given viewport.
func (g *Graph) Request(width, height float64) layout.Request[Attrs, []string] {
	return layout.Request[Attrs, []string]{
		Nodes:    g.Nodes,
		Edges:    g.Edges,
		Width:    width,
		Height:   height,
		CenterID: g.CenterID,
	}
}

type tally struct {
	author reference.Author
	papers []string
}

// Build constructs the graph of center's coauthors from papers. Papers that
// do not list center, or fall outside the filter's years, are ignored;
// duplicate paper ids count once.
func Build(center reference.Author, papers []reference.Reference, f Filter) (*Graph, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	centerKey := center.Key()

	seen := make(map[string]bool)
	coauthors := make(map[string]*tally)
	pairs := make(map[[2]string][]string)
	var kept []reference.Reference

	for _, p := range papers {
		if seen[p.ID] || !f.keepsYear(p.Published.Year) || !p.HasAuthor(centerKey) {
			continue
		}
		seen[p.ID] = true
		kept = append(kept, p)

		var onPaper []string
		dup := map[string]bool{centerKey: true}
		for _, a := range p.Authors {
			k := a.Key()
			if dup[k] {
				continue
			}
			dup[k] = true
			onPaper = append(onPaper, k)

			t, ok := coauthors[k]
			if !ok {
				t = &tally{author: a}
				coauthors[k] = t
			}
			t.papers = append(t.papers, p.ID)
		}
		slices.Sort(onPaper)
		for i := 0; i < len(onPaper); i++ {
			for j := i + 1; j < len(onPaper); j++ {
				pair := [2]string{onPaper[i], onPaper[j]}
				pairs[pair] = append(pairs[pair], p.ID)
			}
		}
	}

	ranked := make([]string, 0, len(coauthors))
	for k, t := range coauthors {
		if len(t.papers) >= f.minShared() {
			ranked = append(ranked, k)
		}
	}
	slices.SortFunc(ranked, func(a, b string) int {
		ta, tb := coauthors[a], coauthors[b]
		if c := cmp.Compare(len(tb.papers), len(ta.papers)); c != 0 {
			return c
		}
		if c := cmp.Compare(ta.author.Name, tb.author.Name); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if f.MaxCoauthors > 0 && len(ranked) > f.MaxCoauthors {
		ranked = ranked[:f.MaxCoauthors]
	}

	g := &Graph{CenterID: centerKey, Papers: len(kept)}
	g.Nodes = append(g.Nodes, layout.Node[Attrs]{
		ID:         centerKey,
		IsCenter:   true,
		PaperCount: len(kept),
		Attrs:      Attrs{Name: center.Name, Shared: len(kept)},
	})
	included := make(map[string]bool, len(ranked))
	for _, k := range ranked {
		t := coauthors[k]
		included[k] = true
		g.Nodes = append(g.Nodes, layout.Node[Attrs]{
			ID:         k,
			PaperCount: len(t.papers),
			Attrs:      Attrs{Name: t.author.Name, Shared: len(t.papers)},
		})
		g.Edges = append(g.Edges, layout.Edge[[]string]{
			ID:      edgeID(centerKey, k),
			Source:  centerKey,
			Target:  k,
			Weight:  float64(len(t.papers)),
			Payload: t.papers,
		})
	}

	var links [][2]string
	for pair := range pairs {
		if included[pair[0]] && included[pair[1]] {
			links = append(links, pair)
		}
	}
	slices.SortFunc(links, func(a, b [2]string) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	for _, pair := range links {
		g.Edges = append(g.Edges, layout.Edge[[]string]{
			ID:      edgeID(pair[0], pair[1]),
			Source:  pair[0],
			Target:  pair[1],
			Weight:  float64(len(pairs[pair])),
			Payload: pairs[pair],
		})
	}
	return g, nil
}

func edgeID(a, b string) string {
	return a + "--" + b
}
