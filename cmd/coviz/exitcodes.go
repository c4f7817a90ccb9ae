package main

import (
	"errors"

	"github.com/matsen/coviz/internal/asta"
	"github.com/matsen/coviz/internal/coauthor"
	"github.com/matsen/coviz/internal/config"
	"github.com/matsen/coviz/internal/host"
	"github.com/matsen/coviz/internal/layout"
)

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (invalid config, missing API key)
	ExitDataError     = 3 // Data error (malformed input, author without papers)
	ExitLayoutTimeout = 4 // Layout did not finish within the timeout

	// ASTA exit codes
	ExitASTANotFound  = 1 // Resource not found in ASTA
	ExitASTAAuthError = 2 // Missing or invalid ASTA_API_KEY
	ExitASTAAPIError  = 3 // API error (rate limit, network)
)

// errDataInput marks errors caused by the user's data rather than the tool.
var errDataInput = errors.New("invalid input")

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case host.IsTimeout(err):
		return ExitLayoutTimeout
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, errMissingAPIKey):
		return ExitConfigError
	case asta.IsAuthError(err):
		return ExitASTAAuthError
	case asta.IsNotFound(err):
		return ExitASTANotFound
	case asta.IsRateLimited(err), errors.Is(err, asta.ErrAPIError), errors.Is(err, asta.ErrNetworkError):
		return ExitASTAAPIError
	case errors.Is(err, errDataInput), layout.IsInvalidInput(err), errors.Is(err, coauthor.ErrInvalidFilter):
		return ExitDataError
	default:
		return ExitError
	}
}
