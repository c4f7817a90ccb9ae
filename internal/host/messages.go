package host

import "github.com/matsen/coviz/internal/layout"

// Message and reply types.
const (
	MessageCompute = "compute"
	ReplyResult    = "result"
	ReplyError     = "error"
)

// Message is a request posted to a worker. The layout input is inlined so
// the JSON form is {"type":"compute","id":...,"nodes":[...],...}.
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	layout.Input
}

// Reply is a worker's answer to one Message, matched by ID.
type Reply struct {
	Type        string              `json:"type"`
	ID          string              `json:"id"`
	Positions   layout.Positions    `json:"positions,omitempty"`
	Convergence *layout.Convergence `json:"convergence,omitempty"`
	Error       string              `json:"error,omitempty"`
}
