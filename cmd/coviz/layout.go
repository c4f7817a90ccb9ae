package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matsen/coviz/internal/host"
	"github.com/matsen/coviz/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [request.json|-]",
	Short: "Compute positions for a layout request",
	Long: `Compute positions for an arbitrary graph.

Reads a layout request from a file, or stdin when the argument is "-" or
missing:

  {"nodes": [{"id": "a", "isCenter": true, "paperCount": 12}, {"id": "b"}],
   "edges": [{"id": "a--b", "source": "a", "target": "b", "weight": 3}],
   "viewportWidth": 800, "viewportHeight": 600, "centerNodeId": "a"}

and writes {"positions": {"a": {"x": 400, "y": 300}, ...}}.

Node attrs and edge payloads are accepted and ignored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

// rawRequest keeps node attrs and edge payloads opaque.
type rawRequest = layout.Request[json.RawMessage, json.RawMessage]

// LayoutResponse is the JSON output of the layout command.
type LayoutResponse struct {
	Positions layout.Positions `json:"positions"`
}

// readRequest decodes a layout request from r.
func readRequest(r io.Reader) (rawRequest, error) {
	var req rawRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return rawRequest{}, fmt.Errorf("%w: decoding layout request: %v", errDataInput, err)
	}
	return req, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", errDataInput, err)
		}
		defer f.Close()
		in = f
	}
	req, err := readRequest(in)
	if err != nil {
		return err
	}

	// Requests are not keyed by author, so they bypass the cache.
	a, err := newApp(ctx, appParts{host: true})
	if err != nil {
		return err
	}
	defer a.close()

	p := newProgress(a.logger)
	pos, err := host.ComputeRequest(ctx, a.host, req)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Laid out %d nodes", len(req.Nodes)))

	if humanOutput {
		printPositionsHuman(pos)
		return nil
	}
	return outputJSON(LayoutResponse{Positions: pos})
}

func printPositionsHuman(pos layout.Positions) {
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		outputHuman("%-*s %9.2f %9.2f\n", NameMaxLen, truncateString(id, NameMaxLen), pos[id].X, pos[id].Y)
	}
}
