package asta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sseServer answers every tool call with the given text blocks, one SSE data
// line each, and records the last request.
func sseServer(t *testing.T, texts ...string) (*httptest.Server, *MCPRequest, *http.Header) {
	t.Helper()
	var last MCPRequest
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": ping\n\nevent: message\n")
		for _, text := range texts {
			resp := MCPResponse{JSONRPC: "2.0", ID: last.ID, Result: &MCPResult{Content: []MCPContent{{Type: "text", Text: text}}}}
			data, _ := json.Marshal(resp)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &last, &header
}

func TestSearchAuthors(t *testing.T) {
	srv, req, header := sseServer(t, `{"result":[{"authorId":"1741101","name":"Frederick A. Matsen","paperCount":200,"hIndex":40}]}`)
	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("secret"))

	authors, err := c.SearchAuthors(context.Background(), "Matsen", 0)
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}
	if len(authors) != 1 || authors[0].AuthorID != "1741101" || authors[0].HIndex != 40 {
		t.Errorf("SearchAuthors() = %+v", authors)
	}
	if req.Params.Name != "search_authors_by_name" {
		t.Errorf("tool = %q", req.Params.Name)
	}
	if got := req.Params.Arguments["limit"]; got != float64(DefaultAuthorSearchLimit) {
		t.Errorf("limit = %v, want %d", got, DefaultAuthorSearchLimit)
	}
	if header.Get("x-api-key") != "secret" {
		t.Errorf("x-api-key = %q", header.Get("x-api-key"))
	}
}

func TestGetAuthorPapers(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  int
	}{
		{
			name:  "wrapped",
			texts: []string{`{"result":[{"paperId":"p1","title":"A","authors":[{"authorId":"1","name":"X"}]},{"paperId":"p2","title":"B"}]}`},
			want:  2,
		},
		{
			name:  "streamed",
			texts: []string{`{"paperId":"p1","title":"A"}`, `{"paperId":"p2","title":"B"}`, `{"paperId":"p3","title":"C"}`},
			want:  3,
		},
		{
			name:  "bare array",
			texts: []string{`[{"paperId":"p1","title":"A"}]`},
			want:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, req, _ := sseServer(t, tt.texts...)
			c := NewClient(WithBaseURL(srv.URL))

			papers, err := c.GetAuthorPapers(context.Background(), "1", 0, "2015:2024")
			if err != nil {
				t.Fatalf("GetAuthorPapers() error = %v", err)
			}
			if len(papers) != tt.want {
				t.Errorf("got %d papers, want %d", len(papers), tt.want)
			}
			if req.Params.Arguments["publication_date_range"] != "2015:2024" {
				t.Errorf("date range = %v", req.Params.Arguments["publication_date_range"])
			}
			if req.Params.Arguments["paper_fields"] != AuthorPaperFields {
				t.Errorf("paper_fields = %v", req.Params.Arguments["paper_fields"])
			}
		})
	}
}

func TestGetAuthorPapers_Invalid(t *testing.T) {
	srv, _, _ := sseServer(t, `not json`)
	c := NewClient(WithBaseURL(srv.URL))

	if _, err := c.GetAuthorPapers(context.Background(), "1", 10, ""); err == nil {
		t.Error("GetAuthorPapers() accepted garbage")
	}
}

func TestClient_HTTPErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, IsAuthError},
		{http.StatusForbidden, IsAuthError},
		{http.StatusTooManyRequests, IsRateLimited},
		{http.StatusNotFound, IsNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).SearchAuthors(context.Background(), "x", 1)
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestClient_MCPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := MCPResponse{JSONRPC: "2.0", ID: 1, Error: &MCPError{Code: 404, Message: "author not found"}}
		data, _ := json.Marshal(resp)
		fmt.Fprintf(w, "data: %s\n\n", data)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GetAuthorPapers(context.Background(), "x", 1, "")
	if !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), "author not found") {
		t.Errorf("error %q lost the server message", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.AuthorID != "x" {
		t.Errorf("error %v does not name the author", err)
	}
}
