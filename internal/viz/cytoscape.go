package viz

import (
	"encoding/json"
	"fmt"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format with a preset
// position.
type CytoscapeNode struct {
	Data     Node              `json:"data"`
	Position CytoscapePosition `json:"position"`
}

// CytoscapePosition is a model-space coordinate.
type CytoscapePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data Edge `json:"data"`
}

// ToCytoscapeJSON converts GraphData to Cytoscape.js JSON format.
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		elements.Nodes = append(elements.Nodes, CytoscapeNode{
			Data:     n,
			Position: CytoscapePosition{X: n.X, Y: n.Y},
		})
	}

	for i, e := range g.Edges {
		if e.ID == "" {
			e.ID = edgeID(e.Source, e.Target, i)
		}
		elements.Edges = append(elements.Edges, CytoscapeEdge{Data: e})
	}

	jsonBytes, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// edgeID generates an edge ID for edges that arrive without one. IDs are
// based on slice position and are not stable across different graph builds.
func edgeID(source, target string, index int) string {
	return fmt.Sprintf("%s-%s-%d", source, target, index)
}
