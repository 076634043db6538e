package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSearchToolFindsMatches(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "package main\n\nfunc Needle() {}\n")
	writeTestFile(t, dir, "b.txt", "no needle here, wrong case\n")

	tool := NewSearchTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"Needle"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out searchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Matches != 1 {
		t.Errorf("expected 1 match, got %d", out.Matches)
	}
	if !strings.Contains(out.Content, "a.go") {
		t.Errorf("expected match in a.go, got %q", out.Content)
	}
	if !strings.Contains(out.Content, ":3:") {
		t.Errorf("expected line number in match, got %q", out.Content)
	}
}

func TestSearchToolIncludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "target\n")
	writeTestFile(t, dir, "b.md", "target\n")

	tool := NewSearchTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"target","include":"*.go"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out searchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Matches != 1 {
		t.Errorf("expected include glob to limit to 1 match, got %d", out.Matches)
	}
	if strings.Contains(out.Content, "b.md") {
		t.Errorf("b.md should be excluded by glob, got %q", out.Content)
	}
}

func TestSearchToolNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "nothing interesting\n")

	tool := NewSearchTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"zzz_absent"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No matches is a valid empty result, not a failure.
	if !res.Success() {
		t.Fatalf("expected success for no matches, got error: %v", res.Error)
	}

	var out searchOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Matches != 0 || out.Content != "(no matches)" {
		t.Errorf("expected empty result document, got %+v", out)
	}
}

func TestSearchToolValidation(t *testing.T) {
	tool := NewSearchTool(t.TempDir())
	if err := tool.Validate(json.RawMessage(`{"pattern":""}`)); err == nil {
		t.Error("expected error for empty pattern")
	}
	if err := tool.Validate(json.RawMessage(`{"pattern":"ok"}`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
