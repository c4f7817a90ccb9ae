package viz

import (
	"fmt"

	"github.com/matsen/coviz/internal/coauthor"
	"github.com/matsen/coviz/internal/layout"
)

// FromCoauthor combines a coauthor graph with its computed positions. Every
// node must have a position.
func FromCoauthor(g *coauthor.Graph, pos layout.Positions) (*GraphData, error) {
	data := &GraphData{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			return nil, fmt.Errorf("no position for node %s", n.ID)
		}
		label := n.Attrs.Name
		if label == "" {
			label = n.ID
		}
		if n.IsCenter {
			data.Title = fmt.Sprintf("Coauthors of %s", label)
		}
		data.Nodes = append(data.Nodes, Node{
			ID:         n.ID,
			Label:      label,
			IsCenter:   n.IsCenter,
			PaperCount: n.PaperCount,
			Size:       layout.NodeSize(n.PaperCount),
			X:          p.X,
			Y:          p.Y,
		})
	}

	for _, e := range g.Edges {
		data.Edges = append(data.Edges, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
			Papers: e.Payload,
		})
	}

	if data.Title == "" {
		data.Title = "Coauthor network"
	}
	return data, nil
}
