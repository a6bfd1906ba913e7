package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/scoutchat/scout/internal/log"
)

// EncyclopediaToolName is the Genkit tool name for Wikipedia lookup.
const EncyclopediaToolName = "wikipedia"

// EncyclopediaToolDescription routes general-knowledge queries to this tool.
const EncyclopediaToolDescription = "Search Wikipedia for encyclopedia articles, " +
	"historical information, biographies, and general knowledge. " +
	"Best for: 'Who was...', 'What is...', 'History of...', 'Explain...' queries."

// defaultWikipediaBaseURL is the English Wikipedia MediaWiki API endpoint.
const defaultWikipediaBaseURL = "https://en.wikipedia.org/w/api.php"

// Encyclopedia looks up Wikipedia articles via the MediaWiki API.
// No credential is required; the tool is still built per session so each
// session owns an isolated client.
type Encyclopedia struct {
	baseURL string
	client  *http.Client
	logger  log.Logger
}

// EncyclopediaConfig configures the Wikipedia lookup tool.
type EncyclopediaConfig struct {
	BaseURL string       // empty = English Wikipedia
	Client  *http.Client // nil = default client with 30s timeout
	Logger  log.Logger
}

// NewEncyclopedia creates the Wikipedia lookup tool.
func NewEncyclopedia(cfg EncyclopediaConfig) (*Encyclopedia, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWikipediaBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient()
	}

	return &Encyclopedia{baseURL: baseURL, client: client, logger: cfg.Logger}, nil
}

// Name returns the tool identifier.
func (e *Encyclopedia) Name() string { return EncyclopediaToolName }

// Description returns the routing description.
func (e *Encyclopedia) Description() string { return EncyclopediaToolDescription }

// wikiResponse is the subset of the MediaWiki query response we consume.
// Pages arrive keyed by page ID; the "index" field preserves search rank.
type wikiResponse struct {
	Query struct {
		Pages map[string]wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Index   int    `json:"index"`
}

// Invoke searches Wikipedia and formats the top pages as
// "Page: ...\nSummary: ..." blocks, each summary truncated to the
// content budget.
func (e *Encyclopedia) Invoke(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", strconv.Itoa(LookupMaxResults))
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", "scout/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying wikipedia: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("wikipedia returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding wikipedia response: %w", err)
	}

	if len(parsed.Query.Pages) == 0 {
		return "No good Wikipedia result found.", nil
	}

	// Restore search ranking: the pages map is unordered.
	pages := make([]wikiPage, 0, len(parsed.Query.Pages))
	for _, p := range parsed.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var sb strings.Builder
	for i, p := range pages {
		if i >= LookupMaxResults {
			break
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Page: %s\nSummary: %s", p.Title, truncate(p.Extract, LookupContentMax))
	}
	return sb.String(), nil
}

// Run adapts Invoke to the Result envelope for Genkit registration.
func (e *Encyclopedia) Run(ctx context.Context, input QueryInput) (Result, error) {
	e.logger.Info("wikipedia lookup called", "query", input.Query)

	if input.Query == "" {
		return errorResult(ErrCodeValidation, "query is required"), nil
	}

	text, err := e.Invoke(ctx, input.Query)
	if err != nil {
		e.logger.Warn("wikipedia lookup failed", "query", input.Query, "error", err)
		return errorResult(ErrCodeUpstream, err.Error()), nil
	}

	e.logger.Info("wikipedia lookup succeeded", "query", input.Query)
	return Result{Status: StatusSuccess, Content: text}, nil
}
