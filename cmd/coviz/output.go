package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Output formatting constants.
const (
	DefaultSearchLimit = 10 // Default limit for author search
	NameMaxLen         = 40 // Author names in human-readable tables
	TopCoauthorsShown  = 10 // Coauthors listed by `author --human`
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

// writeJSON writes a value as formatted JSON to w.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// reportError writes err to stderr as text with --human, otherwise as a JSON
// error body on stdout.
func reportError(err error) {
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return
	}
	outputJSON(ErrorResponse{Error: err.Error()})
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
