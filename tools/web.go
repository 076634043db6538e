// Web Tools - search and fetch through a pluggable backend.
//
// Information Hiding:
// - Backend selection and fallback hidden
// - HTML-to-text reduction hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	maxFetchChars    = 15000
	fetchTimeoutSecs = 15
	maxSearchResults = 10
)

// SearchResult is one ranked result from a search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchBackend is the optional external collaborator serving web_search
// and web_fetch. Absence degrades gracefully: search returns a descriptive
// error result, fetch falls back to a direct HTTP request.
type SearchBackend interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
	Fetch(ctx context.Context, url string) (string, error)
}

// WebSearchTool performs a keyword web search via the backend.
type WebSearchTool struct {
	BaseTool
	backend SearchBackend
}

// NewWebSearchTool creates a new web search tool. backend may be nil.
func NewWebSearchTool(backend SearchBackend) *WebSearchTool {
	return &WebSearchTool{backend: backend}
}

// Metadata returns the tool metadata.
func (t *WebSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "web_search",
		Description: "Search the web. Returns results with title, URL and snippet.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "Search query (1-6 words)", Required: true},
		},
	}
}

type webSearchArgs struct {
	Query string `json:"query"`
}

// Validate validates the arguments.
func (t *WebSearchTool) Validate(args json.RawMessage) error {
	var a webSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

type webSearchOutput struct {
	Query        string         `json:"query"`
	ResultsCount int            `json:"results_count"`
	Results      []SearchResult `json:"results"`
}

// Execute runs the search through the backend.
func (t *WebSearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a webSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Query == "" {
		return FailureResultf("query cannot be empty"), nil
	}

	if t.backend == nil {
		return FailureResultf("web search backend not configured"), nil
	}

	results, err := t.backend.Search(ctx, a.Query, maxSearchResults)
	if err != nil {
		return FailureResult(fmt.Errorf("web search failed: %w", err)), nil
	}

	if results == nil {
		results = []SearchResult{}
	}
	return jsonResult(webSearchOutput{
		Query:        a.Query,
		ResultsCount: len(results),
		Results:      results,
	})
}

// WebFetchTool fetches a web page as cleaned text.
type WebFetchTool struct {
	BaseTool
	backend SearchBackend
	client  *http.Client
}

// NewWebFetchTool creates a new web fetch tool. backend may be nil, in
// which case every fetch uses the direct HTTP fallback.
func NewWebFetchTool(backend SearchBackend) *WebFetchTool {
	return &WebFetchTool{
		backend: backend,
		client:  &http.Client{Timeout: fetchTimeoutSecs * time.Second},
	}
}

// Metadata returns the tool metadata.
func (t *WebFetchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "web_fetch",
		Description: "Fetch a web page as cleaned text.",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "Full URL to fetch", Required: true},
		},
	}
}

type webFetchArgs struct {
	URL string `json:"url"`
}

// Validate validates the arguments.
func (t *WebFetchTool) Validate(args json.RawMessage) error {
	var a webFetchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.URL == "" {
		return fmt.Errorf("url cannot be empty")
	}
	return nil
}

type webFetchOutput struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	ContentLength int    `json:"content_length"`
	Content       string `json:"content"`
}

// Execute fetches the page. The content-length cap applies uniformly
// whether the backend or the fallback served the request.
func (t *WebFetchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a webFetchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.URL == "" {
		return FailureResultf("url cannot be empty"), nil
	}

	if t.backend != nil {
		content, err := t.backend.Fetch(ctx, a.URL)
		if err == nil {
			content = capContent(content)
			return jsonResult(webFetchOutput{
				URL:           a.URL,
				Title:         extractTitle(content, a.URL),
				ContentLength: len(content),
				Content:       content,
			})
		}
		// Backend failure falls through to the direct fetch.
	}

	return t.fetchDirect(ctx, a.URL)
}

// fetchDirect performs a plain HTTP GET with a minimal HTML-to-text
// reduction: strip script and style blocks, strip remaining tags, collapse
// whitespace.
func (t *WebFetchTool) fetchDirect(ctx context.Context, url string) (ToolResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FailureResult(fmt.Errorf("invalid url: %w", err)), nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return FailureResult(fmt.Errorf("fetch failed: %w", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read response: %w", err)), nil
	}

	raw := string(body)
	title := url
	if m := titleRe.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(m[1])
	}

	text := scriptRe.ReplaceAllString(raw, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = capContent(text)

	return jsonResult(webFetchOutput{
		URL:           url,
		Title:         title,
		ContentLength: len(text),
		Content:       text,
	})
}

var (
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// capContent applies the uniform fetch content cap.
func capContent(content string) string {
	if len(content) > maxFetchChars {
		return content[:maxFetchChars] + "\n...[truncated]"
	}
	return content
}

// extractTitle uses the first short line of cleaned content as a title,
// falling back to the URL.
func extractTitle(content, fallback string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return fallback
	}
	first := strings.TrimSpace(lines[0])
	if first == "" || len(first) >= 200 {
		return fallback
	}
	for _, prefix := range []string{"http", "<", "{", "["} {
		if strings.HasPrefix(first, prefix) {
			return fallback
		}
	}
	return strings.TrimSpace(strings.TrimLeft(first, "# "))
}
