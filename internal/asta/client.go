package asta

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the ASTA MCP API base URL.
	BaseURL = "https://asta-tools.allen.ai/mcp/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is 10 requests per second per ASTA documentation.
	RateLimit = 10.0

	// AuthorPaperFields are the paper fields needed to build a coauthor graph.
	AuthorPaperFields = "title,year,venue,publicationDate,externalIds,authors"

	// DefaultAuthorFields are the fields requested by default for author lookups.
	DefaultAuthorFields = "name,affiliations,paperCount,citationCount,hIndex"

	// Default limits for author operations.
	DefaultAuthorSearchLimit = 10
	DefaultAuthorPapersLimit = 500
)

// Client is a rate-limited HTTP client for the ASTA MCP API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	requestID  atomic.Int32
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new ASTA MCP API client.
func NewClient(opts ...ClientOption) *Client {
	// Use a longer timeout for SSE streaming - the server sends pings every 15s
	// and may take a while to process requests
	c := &Client{
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	// Check for API key in environment
	if key := os.Getenv("ASTA_API_KEY"); key != "" {
		c.apiKey = key
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// parseSSEResponse extracts text content from an SSE/MCP response stream.
func parseSSEResponse(body io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var allTextContent []string

	for scanner.Scan() {
		line := scanner.Text()

		// Skip ping events, empty lines, and event type lines
		if strings.HasPrefix(line, ": ping") || line == "" || strings.HasPrefix(line, "event:") {
			continue
		}

		// Look for data: lines containing JSON
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")

			var mcpResp MCPResponse
			if err := json.Unmarshal([]byte(data), &mcpResp); err != nil {
				continue
			}

			if mcpResp.Error != nil {
				return nil, &APIError{
					StatusCode: mcpResp.Error.Code,
					Code:       codeMCP,
					Message:    mcpResp.Error.Message,
				}
			}

			if mcpResp.Result != nil {
				for _, content := range mcpResp.Result.Content {
					if content.Type == "text" && content.Text != "" {
						allTextContent = append(allTextContent, content.Text)
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SSE stream: %w", err)
	}

	return allTextContent, nil
}

// combineStreamingResults combines multiple streaming responses into a single JSON result.
func combineStreamingResults(textContent []string) ([]byte, error) {
	if len(textContent) == 0 {
		return nil, fmt.Errorf("%w: no content received", ErrInvalidResponse)
	}

	if len(textContent) == 1 {
		return []byte(textContent[0]), nil
	}

	// Multiple responses indicate streaming results - combine into array
	var combined strings.Builder
	combined.WriteString(`{"result":[`)
	for i, text := range textContent {
		if i > 0 {
			combined.WriteString(",")
		}
		combined.WriteString(text)
	}
	combined.WriteString("]}")
	return []byte(combined.String()), nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	}
	if resp.StatusCode == 429 {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       codeHTTP,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// callTool executes an MCP tool call and returns the raw JSON result.
func (c *Client) callTool(ctx context.Context, toolName string, args map[string]any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqID := int(c.requestID.Add(1))
	req := MCPRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "tools/call",
		Params: MCPParams{
			Name:      toolName,
			Arguments: args,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	textContent, err := parseSSEResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	return combineStreamingResults(textContent)
}

// SearchAuthors searches for authors by name.
func (c *Client) SearchAuthors(ctx context.Context, name string, limit int) ([]Author, error) {
	if limit <= 0 {
		limit = DefaultAuthorSearchLimit
	}

	args := map[string]any{
		"name":   name,
		"fields": DefaultAuthorFields,
		"limit":  limit,
	}

	result, err := c.callTool(ctx, "search_authors_by_name", args)
	if err != nil {
		return nil, err
	}

	// Response is wrapped in {"result": [...]}
	var wrapper struct {
		Result []Author `json:"result"`
	}
	if err := json.Unmarshal(result, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: parsing authors: %v", ErrInvalidResponse, err)
	}

	return wrapper.Result, nil
}

// GetAuthorPapers fetches an author's papers with their full author lists.
// dateRange is passed through, e.g. "2015:2024".
func (c *Client) GetAuthorPapers(ctx context.Context, authorID string, limit int, dateRange string) ([]Paper, error) {
	if limit <= 0 {
		limit = DefaultAuthorPapersLimit
	}

	args := map[string]any{
		"author_id":    authorID,
		"paper_fields": AuthorPaperFields,
		"limit":        limit,
	}
	if dateRange != "" {
		args["publication_date_range"] = dateRange
	}

	result, err := c.callTool(ctx, "get_author_papers", args)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.AuthorID = authorID
		}
		return nil, err
	}

	// Response is {"result": [...]}, or a bare array for a single streamed result
	var wrapper struct {
		Result []Paper `json:"result"`
	}
	if err := json.Unmarshal(result, &wrapper); err == nil && wrapper.Result != nil {
		return wrapper.Result, nil
	}
	var papers []Paper
	if err := json.Unmarshal(result, &papers); err != nil {
		return nil, fmt.Errorf("%w: parsing author papers: %v", ErrInvalidResponse, err)
	}
	return papers, nil
}
