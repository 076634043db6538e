// Text Search Tool - bounded regex search via grep.
//
// Information Hiding:
// - Subprocess invocation and flag construction hidden
// - Output truncation policy hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	searchTimeoutSecs = 15
	maxMatchesPerFile = 50
	maxSearchOutput   = 8000
)

// SearchTool searches for a regex pattern across the tree rooted at the
// given path, delegating to grep with bounded matches and a hard timeout.
type SearchTool struct {
	BaseTool
	workspace string
}

// NewSearchTool creates a new text search tool.
func NewSearchTool(workspace string) *SearchTool {
	return &SearchTool{workspace: workspace}
}

// Metadata returns the tool metadata.
func (t *SearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "search_text",
		Description: "Search for a regex pattern in files.",
		Parameters: []ToolParameter{
			{Name: "pattern", ParamType: "string", Description: "Search pattern (regex)", Required: true},
			{Name: "path", ParamType: "string", Description: "Directory to search", Required: false},
			{Name: "include", ParamType: "string", Description: "File glob, e.g. '*.go'", Required: false},
		},
	}
}

type searchArgs struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
	Include string `json:"include"`
}

// Validate validates the arguments.
func (t *SearchTool) Validate(args json.RawMessage) error {
	var a searchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	return nil
}

type searchOutput struct {
	Pattern string `json:"pattern"`
	Matches int    `json:"matches"`
	Content string `json:"content"`
}

// Execute runs the search. grep exiting with status 1 means no matches,
// which is a valid empty result, not a failure.
func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a searchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Pattern == "" {
		return FailureResultf("pattern cannot be empty"), nil
	}

	target := "."
	if a.Path != "" {
		target = a.Path
	}
	root := resolvePath(t.workspace, target)

	cmdArgs := []string{"-rn", fmt.Sprintf("--max-count=%d", maxMatchesPerFile), "--color=never"}
	if a.Include != "" {
		cmdArgs = append(cmdArgs, "--include", a.Include)
	}
	for dir := range skipDirs {
		cmdArgs = append(cmdArgs, "--exclude-dir="+dir)
	}
	cmdArgs = append(cmdArgs, a.Pattern, root)

	ctx, cancel := context.WithTimeout(ctx, searchTimeoutSecs*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "grep", cmdArgs...).Output()

	if ctx.Err() == context.DeadlineExceeded {
		return FailureResultf("search timed out after %d seconds", searchTimeoutSecs), nil
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return jsonResult(searchOutput{Pattern: a.Pattern, Matches: 0, Content: "(no matches)"})
		}
		return FailureResult(fmt.Errorf("search failed: %w", err)), nil
	}

	result := string(out)
	if result == "" {
		return jsonResult(searchOutput{Pattern: a.Pattern, Matches: 0, Content: "(no matches)"})
	}

	matchCount := len(strings.Split(strings.TrimSpace(result), "\n"))
	if len(result) > maxSearchOutput {
		result = result[:maxSearchOutput] + fmt.Sprintf("\n...[truncated, %d matches]", matchCount)
	}

	return jsonResult(searchOutput{Pattern: a.Pattern, Matches: matchCount, Content: result})
}
