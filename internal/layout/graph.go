package layout

import (
	"math"
)

// link is an edge resolved to node indices. strength is sqrt(weight).
type link struct {
	a, b     int
	strength float64
}

// graph is the index-based form of an Input used by every stage.
type graph struct {
	ids    []string
	index  map[string]int
	sizes  []float64
	mass   []float64
	center int // -1 when no node is pinned
	links  []link

	// skipped counts edges dropped for referencing unknown nodes.
	skipped int

	width, height float64
}

// Validate reports whether in can be laid out.
func Validate(in Input) error {
	_, err := compile(in)
	return err
}

// compile validates in and resolves ids to indices. Edges that reference
// unknown nodes are skipped; self-loops are rejected.
func compile(in Input) (*graph, error) {
	if !(in.Width > 0) || !(in.Height > 0) || math.IsInf(in.Width, 0) || math.IsInf(in.Height, 0) {
		return nil, &InputError{Err: ErrInvalidViewport, EdgeID: -1}
	}

	n := len(in.Nodes)
	g := &graph{
		ids:    make([]string, n),
		index:  make(map[string]int, n),
		sizes:  make([]float64, n),
		mass:   make([]float64, n),
		center: -1,
		width:  in.Width,
		height: in.Height,
	}

	flagged := -1
	for i, node := range in.Nodes {
		if node.ID == "" {
			return nil, &InputError{Err: ErrEmptyNodeID, EdgeID: -1}
		}
		if _, dup := g.index[node.ID]; dup {
			return nil, &InputError{Err: ErrDuplicateNode, NodeID: node.ID, EdgeID: -1}
		}
		g.ids[i] = node.ID
		g.index[node.ID] = i
		g.sizes[i] = NodeSize(node.PaperCount)
		g.mass[i] = 1
		if node.IsCenter && flagged < 0 {
			flagged = i
		}
	}

	if idx, ok := g.index[in.CenterID]; ok && in.CenterID != "" {
		g.center = idx
	} else {
		g.center = flagged
	}

	g.links = make([]link, 0, len(in.Edges))
	for i, e := range in.Edges {
		if e.Source == e.Target {
			return nil, &InputError{Err: ErrSelfLoop, NodeID: e.Source, EdgeID: i}
		}
		a, okA := g.index[e.Source]
		b, okB := g.index[e.Target]
		if !okA || !okB {
			g.skipped++
			continue
		}
		w := e.Weight
		if !(w > 0) || math.IsInf(w, 0) {
			w = 1
		}
		g.links = append(g.links, link{a: a, b: b, strength: math.Sqrt(w)})
		g.mass[a]++
		g.mass[b]++
	}

	return g, nil
}

func (g *graph) len() int { return len(g.ids) }

func (g *graph) isFixed(i int) bool { return i == g.center }
