// Package tools provides the three search tools the chat agent can call:
// web search (Tavily), encyclopedia lookup (Wikipedia), and academic paper
// lookup (ArXiv).
//
// Each tool is a thin client over an external HTTP API. The result caps are
// functional contracts the agent relies on for response shaping:
//   - web search: top 3 results
//   - encyclopedia: top 2 results, content truncated to 500 characters
//   - papers: top 2 results, content truncated to 500 characters
//
// External API failures surface at invocation time inside the Result
// envelope so the model sees the failure and can respond; they never fail
// registry construction.
package tools

import (
	"context"
	"net/http"
	"time"
)

// Result caps per tool. These values must not change without revisiting the
// tool descriptions the model routes on.
const (
	// WebMaxResults bounds web search to the top results.
	WebMaxResults = 3

	// LookupMaxResults bounds encyclopedia and paper lookups.
	LookupMaxResults = 2

	// LookupContentMax is the per-document character budget for encyclopedia
	// and paper content.
	LookupContentMax = 500
)

// defaultTimeout bounds each outbound tool request.
const defaultTimeout = 30 * time.Second

// Tool is the capability surface the agent selects between.
// Name and Description are the routing contract: the model reads the
// description text to decide which tool serves a query.
type Tool interface {
	// Name returns the unique identifier of the tool.
	Name() string

	// Description returns the natural-language routing description.
	Description() string

	// Invoke runs the tool against the external API and returns formatted
	// text for model consumption.
	Invoke(ctx context.Context, query string) (string, error)

	// Run adapts Invoke to the Result envelope for Genkit registration.
	Run(ctx context.Context, input QueryInput) (Result, error)
}

// QueryInput is the shared input schema for all three search tools.
type QueryInput struct {
	Query string `json:"query" jsonschema_description:"The search query"`
}

// Status values for tool results.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes for tool failures.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNetwork    = "NETWORK_ERROR"
	ErrCodeUpstream   = "UPSTREAM_ERROR"
	ErrCodeDecode     = "DECODE_ERROR"
)

// Error is a structured failure the model can read and react to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the envelope every tool returns to the model.
// Downstream failures are carried inside the envelope (Status=error) rather
// than as Go errors, so a failed search does not abort the whole turn.
type Result struct {
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// errorResult builds an error-status Result.
func errorResult(code, message string) Result {
	return Result{
		Status: StatusError,
		Error:  &Error{Code: code, Message: message},
	}
}

// newHTTPClient returns the client used by tool constructors when the caller
// does not supply one.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// truncate cuts s to at most max runes, appending "..." when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
