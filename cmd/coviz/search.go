package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/coviz/internal/asta"
	"github.com/matsen/coviz/internal/reference"
)

var (
	searchLimit   int
	searchOffline bool
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find authors by name",
	Long: `Search for authors by name to find their Semantic Scholar author ID.

With --offline, searches the names of authors on locally cached papers.

Examples:
  coviz search "Frederick Matsen"
  coviz search matsen --limit 5 --human
  coviz search matsen --offline`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchOffline, "offline", false, "Search the local cache instead of ASTA")
	rootCmd.AddCommand(searchCmd)
}

// AuthorResult is one author in search results.
type AuthorResult struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Affiliations  []string `json:"affiliations,omitempty"`
	PaperCount    int      `json:"paperCount,omitempty"`
	CitationCount int      `json:"citationCount,omitempty"`
	HIndex        int      `json:"hIndex,omitempty"`
}

// SearchResponse is the JSON output of the search command.
type SearchResponse struct {
	Query   string         `json:"query"`
	Source  string         `json:"source"`
	Authors []AuthorResult `json:"authors"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")
	if searchLimit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", errDataInput)
	}

	a, err := newApp(ctx, appParts{db: searchOffline})
	if err != nil {
		return err
	}
	defer a.close()

	resp := SearchResponse{Query: query, Authors: []AuthorResult{}}
	if searchOffline {
		resp.Source = "cache"
		authors, err := a.db.SearchAuthors(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		resp.Authors = append(resp.Authors, fromCachedAuthors(authors)...)
	} else {
		resp.Source = "asta"
		client, err := a.astaClient()
		if err != nil {
			return err
		}
		authors, err := client.SearchAuthors(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		resp.Authors = append(resp.Authors, fromASTAAuthors(authors)...)
	}

	if humanOutput {
		printSearchHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

func fromASTAAuthors(authors []asta.Author) []AuthorResult {
	results := make([]AuthorResult, len(authors))
	for i, au := range authors {
		results[i] = AuthorResult{
			ID:            au.AuthorID,
			Name:          au.Name,
			Affiliations:  au.Affiliations,
			PaperCount:    au.PaperCount,
			CitationCount: au.CitationCount,
			HIndex:        au.HIndex,
		}
	}
	return results
}

func fromCachedAuthors(authors []reference.Author) []AuthorResult {
	results := make([]AuthorResult, len(authors))
	for i, au := range authors {
		results[i] = AuthorResult{ID: au.ID, Name: au.Name}
	}
	return results
}

func printSearchHuman(resp SearchResponse) {
	if len(resp.Authors) == 0 {
		outputHuman("No authors found for %q\n", resp.Query)
		return
	}
	for i, au := range resp.Authors {
		id := au.ID
		if id == "" {
			id = "-"
		}
		outputHuman("%d. %s [%s]\n", i+1, au.Name, id)
		if len(au.Affiliations) > 0 {
			outputHuman("   %s\n", strings.Join(au.Affiliations, "; "))
		}
		if au.PaperCount > 0 {
			outputHuman("   papers: %d  citations: %d  h-index: %d\n", au.PaperCount, au.CitationCount, au.HIndex)
		}
	}
}
