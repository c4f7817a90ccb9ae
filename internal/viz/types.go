// Package viz renders laid-out coauthor networks for the browser.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is an author placed at a computed position.
type Node struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	IsCenter   bool    `json:"isCenter"`
	PaperCount int     `json:"paperCount"`
	Size       float64 `json:"size"`

	X float64 `json:"-"`
	Y float64 `json:"-"`
}

// Edge is a coauthorship; Papers lists the shared paper ids.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight float64  `json:"weight"`
	Papers []string `json:"papers,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
