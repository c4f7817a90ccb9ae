package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matsen/coviz/internal/asta"
	"github.com/matsen/coviz/internal/author"
	"github.com/matsen/coviz/internal/coauthor"
	"github.com/matsen/coviz/internal/host"
	"github.com/matsen/coviz/internal/importer"
	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/layoutcache"
	"github.com/matsen/coviz/internal/reference"
	"github.com/matsen/coviz/internal/storage"
	"github.com/matsen/coviz/internal/viz"
)

var (
	authorYears        string
	authorMinShared    int
	authorMaxCoauthors int
	authorWidth        float64
	authorHeight       float64
	authorFormat       string
	authorOutput       string
	authorPapersFile   string
	authorLimit        int
	authorOffline      bool
	authorSavePapers   string
)

var authorCmd = &cobra.Command{
	Use:   "author <author-id|name>",
	Short: "Lay out an author's coauthor network",
	Long: `Build the coauthor network of an author and compute its layout.

Papers are fetched from ASTA by Semantic Scholar author ID and cached locally.
Use --offline to work from the local cache only, or --papers to read a JSONL
file (or a Paperpile .json export) instead. With --papers the author may also be given by name
("Timothy Yu", "Yu, Tim"), matched against the authors of the file.

Use "coviz search <name>" to find an author's ID first.

Examples:
  coviz author 1234567
  coviz author 1234567 --year 2015:2024 --min-shared 2
  coviz author 1234567 --format html -o network.html
  coviz author 1234567 --papers papers.jsonl --max-coauthors 50
  coviz author "Yu, Timothy" --papers papers.jsonl
  coviz author 1234567 --save-papers papers.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthor,
}

func init() {
	authorCmd.Flags().StringVar(&authorYears, "year", "", "Publication year range (e.g., 2015:2024, 2020:, :2019)")
	authorCmd.Flags().IntVar(&authorMinShared, "min-shared", 1, "Minimum shared papers for a coauthor to be shown")
	authorCmd.Flags().IntVar(&authorMaxCoauthors, "max-coauthors", 0, "Keep only the N most frequent coauthors (0 = all)")
	authorCmd.Flags().Float64Var(&authorWidth, "width", 0, "Viewport width (default from config)")
	authorCmd.Flags().Float64Var(&authorHeight, "height", 0, "Viewport height (default from config)")
	authorCmd.Flags().StringVar(&authorFormat, "format", "json", "Output format: json or html")
	authorCmd.Flags().StringVarP(&authorOutput, "output", "o", "", "Write output to file instead of stdout")
	authorCmd.Flags().StringVar(&authorPapersFile, "papers", "", "Read papers from a JSONL file or Paperpile JSON export instead of ASTA")
	authorCmd.Flags().IntVar(&authorLimit, "limit", asta.DefaultAuthorPapersLimit, "Maximum number of papers fetched from ASTA")
	authorCmd.Flags().BoolVar(&authorOffline, "offline", false, "Use only papers cached locally")
	authorCmd.Flags().StringVar(&authorSavePapers, "save-papers", "", "Also write the papers used to a JSONL file (readable with --papers)")
	rootCmd.AddCommand(authorCmd)
}

// AuthorResponse is the JSON output of the author command.
type AuthorResponse struct {
	Center    reference.Author `json:"center"`
	Papers    int              `json:"papers"`
	Filter    coauthor.Filter  `json:"filter"`
	Cached    bool             `json:"cached"`
	Graph     *viz.GraphData   `json:"graph"`
	Positions layout.Positions `json:"positions"`
}

// buildFilter assembles the coauthor filter from flag values.
func buildFilter(years string, minShared, maxCoauthors int) (coauthor.Filter, error) {
	from, to, err := coauthor.ParseYears(years)
	if err != nil {
		return coauthor.Filter{}, err
	}
	f := coauthor.Filter{YearFrom: from, YearTo: to, MinShared: minShared, MaxCoauthors: maxCoauthors}
	if err := f.Validate(); err != nil {
		return coauthor.Filter{}, err
	}
	return f, nil
}

func runAuthor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	authorID := args[0]

	if authorFormat != "json" && authorFormat != "html" {
		return fmt.Errorf("%w: unknown format %q (want json or html)", errDataInput, authorFormat)
	}
	filter, err := buildFilter(authorYears, authorMinShared, authorMaxCoauthors)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appParts{db: true, host: true, cache: true})
	if err != nil {
		return err
	}
	defer a.close()

	width, height := a.settings.ViewportWidth, a.settings.ViewportHeight
	if authorWidth > 0 {
		width = authorWidth
	}
	if authorHeight > 0 {
		height = authorHeight
	}

	papers, err := a.loadPapers(ctx, authorID)
	if err != nil {
		return err
	}
	if authorSavePapers != "" {
		if err := storage.WritePapers(authorSavePapers, papers); err != nil {
			return err
		}
		a.logger.Info("saved papers", "path", authorSavePapers, "count", len(papers))
	}
	center, ok := resolveCenter(authorID, papers)
	if !ok {
		return fmt.Errorf("%w: author %s appears on none of %d papers", errDataInput, authorID, len(papers))
	}

	g, err := coauthor.Build(center, papers, filter)
	if err != nil {
		return err
	}
	a.logger.Debug("built coauthor graph", "center", center.Name, "papers", g.Papers, "nodes", len(g.Nodes), "edges", len(g.Edges))

	pos, cached, err := a.layoutGraph(ctx, g, filter, width, height)
	if err != nil {
		return err
	}

	data, err := viz.FromCoauthor(g, pos)
	if err != nil {
		return err
	}

	if authorFormat == "html" {
		html, err := viz.GenerateHTML(data, viz.HTMLOptions{Width: width, Height: height})
		if err != nil {
			return err
		}
		return writeOutput(authorOutput, []byte(html))
	}

	resp := AuthorResponse{
		Center:    center,
		Papers:    g.Papers,
		Filter:    filter,
		Cached:    cached,
		Graph:     data,
		Positions: pos,
	}
	if humanOutput && authorOutput == "" {
		printAuthorHuman(resp, g)
		return nil
	}
	if authorOutput != "" {
		f, err := os.Create(authorOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", authorOutput, err)
		}
		defer f.Close()
		return writeJSON(f, resp)
	}
	return outputJSON(resp)
}

// loadPapers returns the papers to build the graph from: a JSONL file, the
// local cache, or ASTA (saving the results to the cache).
func (a *app) loadPapers(ctx context.Context, authorID string) ([]reference.Reference, error) {
	switch {
	case authorPapersFile != "":
		refs, err := readPapersFile(a.logger, authorPapersFile)
		if err != nil {
			return nil, err
		}
		if _, err := a.db.SavePapers(ctx, refs); err != nil {
			return nil, err
		}
		return refs, nil

	case authorOffline:
		refs, err := a.db.PapersByAuthor(ctx, authorID)
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("%w: no cached papers for author %s", errDataInput, authorID)
		}
		return refs, nil
	}

	client, err := a.astaClient()
	if err != nil {
		return nil, err
	}
	p := newProgress(a.logger)
	papers, err := client.GetAuthorPapers(ctx, authorID, authorLimit, "")
	if err != nil {
		return nil, err
	}
	refs := asta.ToReferences(papers)
	if _, err := a.db.SavePapers(ctx, refs); err != nil {
		return nil, err
	}
	p.done(fmt.Sprintf("Fetched %d papers for author %s", len(refs), authorID))
	return refs, nil
}

// readPapersFile loads papers from a Paperpile JSON export (.json) or a JSONL
// file of references. Unusable Paperpile entries are logged and skipped.
func readPapersFile(logger *log.Logger, path string) ([]reference.Reference, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		refs, err := storage.ReadPapers(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", errDataInput, path, err)
		}
		return refs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDataInput, err)
	}
	refs, errs := importer.ParsePaperpile(data)
	if len(refs) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %v", errDataInput, path, errs[0])
	}
	for _, e := range errs {
		logger.Warn("skipping entry", "file", path, "err", e)
	}
	return refs, nil
}

// resolveCenter finds the center author on papers by ID, falling back to a
// name match for papers without author IDs.
func resolveCenter(arg string, papers []reference.Reference) (reference.Author, bool) {
	if center, ok := asta.FindAuthor(arg, papers); ok {
		return center, true
	}
	return author.Resolve(author.ParseQuery(arg), papers)
}

// layoutGraph returns positions for g, from the cache when possible.
func (a *app) layoutGraph(ctx context.Context, g *coauthor.Graph, f coauthor.Filter, width, height float64) (layout.Positions, bool, error) {
	req := g.Request(width, height)
	compute := func(ctx context.Context) (layout.Positions, error) {
		p := newProgress(a.logger)
		pos, err := host.ComputeRequest(ctx, a.host, req)
		if err != nil {
			return nil, err
		}
		p.done(fmt.Sprintf("Laid out %d nodes", len(g.Nodes)))
		return pos, nil
	}
	if a.cache == nil {
		pos, err := compute(ctx)
		return pos, false, err
	}
	key := layoutcache.Key{
		CenterID: g.CenterID,
		Filter:   f.Key(),
		Width:    width,
		Height:   height,
		Graph:    layoutcache.GraphDigest(req.Input()),
	}
	return a.cache.GetOrCompute(ctx, key, compute)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if humanOutput {
		outputHuman("Wrote %s\n", path)
	}
	return nil
}

func printAuthorHuman(resp AuthorResponse, g *coauthor.Graph) {
	outputHuman("%s\n", resp.Graph.Title)
	outputHuman("  Papers:    %d\n", resp.Papers)
	outputHuman("  Coauthors: %d\n", len(g.Nodes)-1)
	outputHuman("  Edges:     %d\n", len(g.Edges))
	if resp.Cached {
		outputHuman("  Layout:    cached\n")
	}

	if len(g.Nodes) > 1 {
		outputHuman("\nTop coauthors:\n")
	}
	for i, n := range g.Nodes[1:] {
		if i >= TopCoauthorsShown {
			outputHuman("  ... and %d more\n", len(g.Nodes)-1-TopCoauthorsShown)
			break
		}
		outputHuman("  %-*s %3d shared\n", NameMaxLen, truncateString(n.Attrs.Name, NameMaxLen), n.Attrs.Shared)
	}
}
