package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubBackend struct {
	results  []SearchResult
	content  string
	fail     bool
	searches int
}

func (s *stubBackend) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	s.searches++
	if s.fail {
		return nil, fmt.Errorf("backend down")
	}
	return s.results, nil
}

func (s *stubBackend) Fetch(ctx context.Context, url string) (string, error) {
	if s.fail {
		return "", fmt.Errorf("backend down")
	}
	return s.content, nil
}

func TestWebSearchToolWithBackend(t *testing.T) {
	backend := &stubBackend{
		results: []SearchResult{
			{Title: "Go", URL: "https://go.dev", Snippet: "The Go programming language"},
		},
	}
	tool := NewWebSearchTool(backend)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"golang"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out webSearchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.ResultsCount != 1 || out.Results[0].URL != "https://go.dev" {
		t.Errorf("unexpected search output: %+v", out)
	}
}

func TestWebSearchToolNoBackend(t *testing.T) {
	tool := NewWebSearchTool(nil)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"golang"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success() {
		t.Fatal("expected failure without backend")
	}
	if !strings.Contains(res.Error.Error(), "backend not configured") {
		t.Errorf("expected backend error, got %q", res.Error.Error())
	}
}

func TestWebFetchToolDirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Test Page</title><script>var x=1;</script></head>`+
			`<body><p>Hello   world</p></body></html>`)
	}))
	defer server.Close()

	tool := NewWebFetchTool(nil)
	res, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, server.URL)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out webFetchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Title != "Test Page" {
		t.Errorf("expected title from <title> tag, got %q", out.Title)
	}
	if !strings.Contains(out.Content, "Hello world") {
		t.Errorf("expected cleaned text with collapsed whitespace, got %q", out.Content)
	}
	if strings.Contains(out.Content, "var x=1") {
		t.Errorf("script content should be stripped, got %q", out.Content)
	}
	if strings.Contains(out.Content, "<p>") {
		t.Errorf("tags should be stripped, got %q", out.Content)
	}
}

func TestWebFetchToolBackendFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>fallback served</body></html>")
	}))
	defer server.Close()

	// Backend fails, direct fetch takes over.
	tool := NewWebFetchTool(&stubBackend{fail: true})
	res, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, server.URL)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success via fallback, got error: %v", res.Error)
	}

	var out webFetchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !strings.Contains(out.Content, "fallback served") {
		t.Errorf("expected fallback content, got %q", out.Content)
	}
}

func TestWebFetchToolUnreachable(t *testing.T) {
	tool := NewWebFetchTool(nil)
	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"url":"http://127.0.0.1:1/nothing"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success() {
		t.Fatal("expected failure for unreachable host")
	}
}

func TestCapContent(t *testing.T) {
	long := strings.Repeat("a", maxFetchChars+10)
	got := capContent(long)
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Error("expected truncation marker")
	}
	if got := capContent("short"); got != "short" {
		t.Errorf("short content should pass through, got %q", got)
	}
}
