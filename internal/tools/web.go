package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/scoutchat/scout/internal/log"
)

// WebToolName is the Genkit tool name for web search.
const WebToolName = "tavily_search"

// WebToolDescription routes current-events and general web queries to this
// tool. The model depends on this text to pick web search over the
// encyclopedia and paper tools.
const WebToolDescription = "Search the web for current information, news, and " +
	"general online content. Returns up to 3 results with titles, URLs, and " +
	"content snippets. Best for: recent events, 'What happened...', " +
	"'Current status of...', and anything requiring up-to-date web sources."

// defaultTavilyBaseURL is the production Tavily endpoint.
const defaultTavilyBaseURL = "https://api.tavily.com"

// Web performs web searches via the Tavily API.
type Web struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  log.Logger
}

// WebConfig configures the web search tool.
type WebConfig struct {
	APIKey  string
	BaseURL string       // empty = production Tavily endpoint
	Client  *http.Client // nil = default client with 30s timeout
	Logger  log.Logger
}

// NewWeb creates the Tavily-backed web search tool.
func NewWeb(cfg WebConfig) (*Web, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily api key is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient()
	}

	return &Web{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  cfg.Logger,
	}, nil
}

// Name returns the tool identifier.
func (w *Web) Name() string { return WebToolName }

// Description returns the routing description.
func (w *Web) Description() string { return WebToolDescription }

// tavilyRequest is the Tavily /search request body.
type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// tavilyResponse is the subset of the Tavily response we consume.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Invoke searches the web and formats the top results as text blocks.
func (w *Web) Invoke(ctx context.Context, query string) (string, error) {
	reqBody, err := json.Marshal(tavilyRequest{
		APIKey:     w.apiKey,
		Query:      query,
		MaxResults: WebMaxResults,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("searching web: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return "No results found.", nil
	}

	var sb strings.Builder
	for i, r := range parsed.Results {
		if i >= WebMaxResults {
			break
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Title: %s\nURL: %s\nContent: %s", r.Title, r.URL, r.Content)
	}
	return sb.String(), nil
}

// Run adapts Invoke to the Result envelope for Genkit registration.
func (w *Web) Run(ctx context.Context, input QueryInput) (Result, error) {
	w.logger.Info("web search called", "query", input.Query)

	if input.Query == "" {
		return errorResult(ErrCodeValidation, "query is required"), nil
	}

	text, err := w.Invoke(ctx, input.Query)
	if err != nil {
		w.logger.Warn("web search failed", "query", input.Query, "error", err)
		return errorResult(ErrCodeUpstream, err.Error()), nil
	}

	w.logger.Info("web search succeeded", "query", input.Query)
	return Result{Status: StatusSuccess, Content: text}, nil
}
