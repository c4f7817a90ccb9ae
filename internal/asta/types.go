// Package asta provides a client for the ASTA MCP API, which serves
// Semantic Scholar author and paper data.
package asta

// MCPRequest is a JSON-RPC tool call.
type MCPRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Method  string    `json:"method"`
	Params  MCPParams `json:"params"`
}

// MCPParams names the tool and its arguments.
type MCPParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// MCPResponse is one JSON-RPC message from the SSE stream.
type MCPResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Result  *MCPResult `json:"result,omitempty"`
	Error   *MCPError  `json:"error,omitempty"`
}

// MCPResult holds tool output as content blocks.
type MCPResult struct {
	Content []MCPContent `json:"content"`
}

// MCPContent is a single content block; only text blocks are used.
type MCPContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MCPError is a JSON-RPC error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Paper is a paper as returned by ASTA.
type Paper struct {
	PaperID     string      `json:"paperId"`
	ExternalIDs ExternalIDs `json:"externalIds,omitempty"`
	Title       string      `json:"title"`
	Authors     []Author    `json:"authors,omitempty"`
	Year        int         `json:"year,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	PubDate     string      `json:"publicationDate,omitempty"` // YYYY-MM-DD format
}

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	DOI string `json:"DOI,omitempty"`
}

// Author is an author as returned by ASTA. Only search results carry the
// counts.
type Author struct {
	AuthorID      string   `json:"authorId,omitempty"`
	Name          string   `json:"name"`
	Affiliations  []string `json:"affiliations,omitempty"`
	PaperCount    int      `json:"paperCount,omitempty"`
	CitationCount int      `json:"citationCount,omitempty"`
	HIndex        int      `json:"hIndex,omitempty"`
}
