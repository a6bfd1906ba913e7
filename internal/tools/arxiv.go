package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/scoutchat/scout/internal/log"
)

// PapersToolName is the Genkit tool name for ArXiv lookup.
const PapersToolName = "arxiv"

// PapersToolDescription routes academic queries to this tool.
const PapersToolDescription = "Search ArXiv for academic papers, research articles, " +
	"and scientific publications. " +
	"Best for: 'Latest research on...', 'Papers about...', 'Scientific studies on...' queries."

// defaultArxivBaseURL is the ArXiv Atom query endpoint.
const defaultArxivBaseURL = "http://export.arxiv.org/api/query"

// Papers looks up academic papers via the ArXiv API.
type Papers struct {
	baseURL string
	client  *http.Client
	logger  log.Logger
}

// PapersConfig configures the ArXiv lookup tool.
type PapersConfig struct {
	BaseURL string       // empty = production ArXiv endpoint
	Client  *http.Client // nil = default client with 30s timeout
	Logger  log.Logger
}

// NewPapers creates the ArXiv lookup tool.
func NewPapers(cfg PapersConfig) (*Papers, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArxivBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient()
	}

	return &Papers{baseURL: baseURL, client: client, logger: cfg.Logger}, nil
}

// Name returns the tool identifier.
func (p *Papers) Name() string { return PapersToolName }

// Description returns the routing description.
func (p *Papers) Description() string { return PapersToolDescription }

// arxivFeed is the subset of the ArXiv Atom feed we consume.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Invoke searches ArXiv and formats the top entries with published date,
// title, authors, and a truncated summary.
func (p *Papers) Invoke(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(LookupMaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating arxiv request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying arxiv: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("arxiv returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("decoding arxiv feed: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "No good ArXiv result found.", nil
	}

	var sb strings.Builder
	for i, entry := range feed.Entries {
		if i >= LookupMaxResults {
			break
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}

		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			names = append(names, a.Name)
		}

		published := entry.Published
		if len(published) >= 10 {
			published = published[:10] // date portion of RFC 3339
		}

		fmt.Fprintf(&sb, "Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
			published,
			collapseWhitespace(entry.Title),
			strings.Join(names, ", "),
			truncate(collapseWhitespace(entry.Summary), LookupContentMax),
		)
	}
	return sb.String(), nil
}

// Run adapts Invoke to the Result envelope for Genkit registration.
func (p *Papers) Run(ctx context.Context, input QueryInput) (Result, error) {
	p.logger.Info("arxiv lookup called", "query", input.Query)

	if input.Query == "" {
		return errorResult(ErrCodeValidation, "query is required"), nil
	}

	text, err := p.Invoke(ctx, input.Query)
	if err != nil {
		p.logger.Warn("arxiv lookup failed", "query", input.Query, "error", err)
		return errorResult(ErrCodeUpstream, err.Error()), nil
	}

	p.logger.Info("arxiv lookup succeeded", "query", input.Query)
	return Result{Status: StatusSuccess, Content: text}, nil
}

// collapseWhitespace flattens the newline-wrapped text ArXiv returns in
// title and summary fields.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
