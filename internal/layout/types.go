// Package layout computes force-directed positions for coauthor graphs.
//
// The pipeline is pure: Run places nodes deterministically, iterates the force
// simulation under a convergence controller, rescales the result into the
// viewport and finally pushes overlapping nodes apart. It knows nothing about
// how it is scheduled; see package host for synchronous vs. worker execution.
package layout

import "math"

// Node is a graph vertex. Attrs is carried for the caller and never read here.
type Node[A any] struct {
	ID         string `json:"id"`
	IsCenter   bool   `json:"isCenter,omitempty"`
	PaperCount int    `json:"paperCount,omitempty"`
	Attrs      A      `json:"attrs,omitempty"`
}

// Edge connects two nodes. Weight is the number of shared papers (default 1).
type Edge[P any] struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Weight  float64 `json:"weight,omitempty"`
	Payload P       `json:"payload,omitempty"`
}

// Request is a layout request as produced by the graph builder.
type Request[A, P any] struct {
	Nodes    []Node[A] `json:"nodes"`
	Edges    []Edge[P] `json:"edges"`
	Width    float64   `json:"viewportWidth"`
	Height   float64   `json:"viewportHeight"`
	CenterID string    `json:"centerNodeId"`
}

// Input returns the request stripped of its passthrough fields.
func (r Request[A, P]) Input() Input {
	in := Input{
		Nodes:    make([]NodeSpec, len(r.Nodes)),
		Edges:    make([]EdgeSpec, len(r.Edges)),
		Width:    r.Width,
		Height:   r.Height,
		CenterID: r.CenterID,
	}
	for i, n := range r.Nodes {
		in.Nodes[i] = NodeSpec{ID: n.ID, IsCenter: n.IsCenter, PaperCount: n.PaperCount}
	}
	for i, e := range r.Edges {
		in.Edges[i] = EdgeSpec{Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	return in
}

// NodeSpec holds the node fields the engine reads.
type NodeSpec struct {
	ID         string `json:"id"`
	IsCenter   bool   `json:"isCenter,omitempty"`
	PaperCount int    `json:"paperCount,omitempty"`
}

// EdgeSpec holds the edge fields the engine reads.
type EdgeSpec struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

// Input is the self-contained unit of work handed to the engine. It shares no
// memory with the caller's Request.
type Input struct {
	Nodes    []NodeSpec `json:"nodes"`
	Edges    []EdgeSpec `json:"edges"`
	Width    float64    `json:"viewportWidth"`
	Height   float64    `json:"viewportHeight"`
	CenterID string     `json:"centerNodeId"`
}

// Point is a coordinate in viewport space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node id to its final coordinate.
type Positions map[string]Point

// NodeSize returns the rendered size of a node with the given paper count.
func NodeSize(paperCount int) float64 {
	if paperCount <= 0 {
		paperCount = 1
	}
	return 10 + math.Sqrt(float64(paperCount))*5
}
