// Filesystem Tools - Read, Write, Edit operations against the workspace.
//
// Information Hiding:
// - File I/O implementation details hidden
// - Truncation windows and diff accounting hidden
// - Error handling for file operations abstracted

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxReadFileBytes is the hard ceiling for read_file; larger files must
	// be viewed through a line range.
	MaxReadFileBytes = 500_000

	maxDisplayLines = 200
	headLines       = 100
	tailLines       = 100
)

// ReadFileTool reads file contents with 1-indexed line numbers. Files above
// the display threshold are returned as head and tail windows with an
// explicit omission marker so the caller can request the missing range.
type ReadFileTool struct {
	BaseTool
	workspace string
}

// NewReadFileTool creates a new read file tool.
func NewReadFileTool(workspace string) *ReadFileTool {
	return &ReadFileTool{workspace: workspace}
}

// Metadata returns the tool metadata.
func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: "read_file",
		Description: "Read file contents with line numbers. Large files auto-truncated to head+tail. " +
			"Use start_line/end_line to view specific sections.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path", Required: true},
			{Name: "start_line", ParamType: "integer", Description: "Start line (1-indexed)", Required: false},
			{Name: "end_line", ParamType: "integer", Description: "End line (inclusive)", Required: false},
		},
	}
}

type readFileArgs struct {
	Path      string `json:"path"`
	StartLine *int   `json:"start_line"`
	EndLine   *int   `json:"end_line"`
}

// Validate validates the arguments.
func (t *ReadFileTool) Validate(args json.RawMessage) error {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

type readFileOutput struct {
	Path           string `json:"path"`
	Filename       string `json:"filename"`
	TotalLines     int    `json:"total_lines"`
	Lines          string `json:"lines"`
	Content        string `json:"content"`
	Truncated      bool   `json:"truncated"`
	TruncatedStart int    `json:"truncated_start,omitempty"`
	TruncatedEnd   int    `json:"truncated_end,omitempty"`
	TruncatedRange string `json:"truncated_range,omitempty"`
	Hint           string `json:"hint,omitempty"`
}

// Execute reads the file.
func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	path := resolvePath(t.workspace, a.Path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return FailureResultf("file not found: %s", path), nil
	}
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file metadata: %w", err)), nil
	}
	if info.IsDir() {
		return FailureResultf("not a file: %s", path), nil
	}

	if info.Size() > MaxReadFileBytes {
		return FailureResultf("file too large (%d bytes). Use start_line/end_line.", info.Size()), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file: %w", err)), nil
	}

	lines := splitLines(string(content))
	total := len(lines)
	filename := filepath.Base(path)
	hasRange := a.StartLine != nil || a.EndLine != nil

	if !hasRange && total > maxDisplayLines {
		head := numberLines(lines, 1, headLines)
		tail := numberLines(lines, total-tailLines+1, total)
		omitted := total - headLines - tailLines
		ts, te := headLines+1, total-tailLines

		out := readFileOutput{
			Path:       path,
			Filename:   filename,
			TotalLines: total,
			Lines:      fmt.Sprintf("1-%d+%d-%d/%d", headLines, total-tailLines+1, total, total),
			Content: head +
				fmt.Sprintf("\n... [%d lines truncated - use start_line/end_line to view %d-%d] ...\n\n", omitted, ts, te) +
				tail,
			Truncated:      true,
			TruncatedStart: ts,
			TruncatedEnd:   te,
			TruncatedRange: fmt.Sprintf("%d-%d", ts, te),
			Hint:           fmt.Sprintf("View truncated section of %s", filename),
		}
		return jsonResult(out)
	}

	start, end := 1, total
	if a.StartLine != nil && *a.StartLine > 1 {
		start = *a.StartLine
	}
	if a.EndLine != nil && *a.EndLine < total {
		end = *a.EndLine
	}
	if end < start {
		end = start - 1
	}

	out := readFileOutput{
		Path:       path,
		Filename:   filename,
		TotalLines: total,
		Lines:      fmt.Sprintf("%d-%d/%d", start, end, total),
		Content:    numberLines(lines, start, end),
		Truncated:  false,
	}
	return jsonResult(out)
}

// splitLines splits content into lines without trailing newline artifacts.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// numberLines renders lines start..end (1-indexed, inclusive) with numbers.
func numberLines(lines []string, start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i <= len(lines); i++ {
		fmt.Fprintf(&b, "%4d | %s\n", i, lines[i-1])
	}
	return b.String()
}

// countLines counts the lines of a content string; a trailing partial line
// counts as one.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

func jsonResult(v interface{}) (ToolResult, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to encode result: %w", err)), nil
	}
	return SuccessResult(string(doc)), nil
}

// WriteFileTool creates or overwrites a file, creating parent directories
// as needed.
type WriteFileTool struct {
	BaseTool
	workspace string
	changes   *ChangeLog
}

// NewWriteFileTool creates a new write file tool.
func NewWriteFileTool(workspace string, changes *ChangeLog) *WriteFileTool {
	return &WriteFileTool{workspace: workspace, changes: changes}
}

// Metadata returns the tool metadata.
func (t *WriteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_file",
		Description: "Create or overwrite a file. Parent dirs created automatically.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path", Required: true},
			{Name: "content", ParamType: "string", Description: "Complete file content", Required: true},
		},
	}
}

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Validate validates the arguments.
func (t *WriteFileTool) Validate(args json.RawMessage) error {
	var a writeFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

type writeFileOutput struct {
	Success  bool   `json:"success"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Lines    int    `json:"lines"`
	Action   string `json:"action"`
}

// Execute writes the file with full overwrite semantics.
func (t *WriteFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a writeFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	path := resolvePath(t.workspace, a.Path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return FailureResult(fmt.Errorf("failed to create directory: %w", err)), nil
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write file: %w", err)), nil
	}

	lineCount := countLines(a.Content)
	filename := filepath.Base(path)
	action := "overwritten"
	if isNew {
		action = "created"
	}

	t.changes.Record(FileChange{
		Action:   action,
		Path:     path,
		Filename: filename,
		Lines:    lineCount,
	})

	return jsonResult(writeFileOutput{
		Success:  true,
		Path:     path,
		Filename: filename,
		Size:     len(a.Content),
		Lines:    lineCount,
		Action:   action,
	})
}

// EditFileTool performs an exact, unique-occurrence string replacement.
type EditFileTool struct {
	BaseTool
	workspace string
	changes   *ChangeLog
}

// NewEditFileTool creates a new edit file tool.
func NewEditFileTool(workspace string, changes *ChangeLog) *EditFileTool {
	return &EditFileTool{workspace: workspace, changes: changes}
}

// Metadata returns the tool metadata.
func (t *EditFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: "edit_file",
		Description: "Replace a unique string in a file. old_str must appear exactly once. " +
			"Returns change stats (+N -M).",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "File path", Required: true},
			{Name: "old_str", ParamType: "string", Description: "Exact string to replace (must be unique)", Required: true},
			{Name: "new_str", ParamType: "string", Description: "Replacement string", Required: true},
		},
	}
}

type editFileArgs struct {
	Path   string `json:"path"`
	OldStr string `json:"old_str"`
	NewStr string `json:"new_str"`
}

// Validate validates the arguments.
func (t *EditFileTool) Validate(args json.RawMessage) error {
	var a editFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if a.OldStr == "" {
		return fmt.Errorf("old_str cannot be empty")
	}
	return nil
}

type editFileOutput struct {
	Success      bool   `json:"success"`
	Path         string `json:"path"`
	Filename     string `json:"filename"`
	Diff         string `json:"diff"`
	AddedLines   int    `json:"added_lines"`
	RemovedLines int    `json:"removed_lines"`
}

// Execute performs the edit. Zero occurrences of old_str is a not-found
// error carrying a diagnostic hint; more than one is rejected as ambiguous
// because silently picking an occurrence risks editing the wrong location.
func (t *EditFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a editFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}
	if a.OldStr == "" {
		return FailureResultf("old_str cannot be empty"), nil
	}

	path := resolvePath(t.workspace, a.Path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return FailureResultf("file not found: %s", path), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file: %w", err)), nil
	}

	contentStr := string(content)
	occurrences := strings.Count(contentStr, a.OldStr)

	if occurrences == 0 {
		hint := findSimilar(contentStr, a.OldStr)
		if hint != "" {
			hint = fmt.Sprintf("; similar content: %q", hint)
		}
		return FailureResultf("old_str not found in %s (%d bytes, %d lines)%s",
			filepath.Base(path), len(contentStr), countLines(contentStr), hint), nil
	}
	if occurrences > 1 {
		return FailureResultf("old_str found %d times, must be unique", occurrences), nil
	}

	updated := strings.Replace(contentStr, a.OldStr, a.NewStr, 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write file: %w", err)), nil
	}

	added, removed := diffStats(a.OldStr, a.NewStr)
	filename := filepath.Base(path)

	t.changes.Record(FileChange{
		Action:   "edited",
		Path:     path,
		Filename: filename,
		Added:    added,
		Removed:  removed,
	})

	return jsonResult(editFileOutput{
		Success:      true,
		Path:         path,
		Filename:     filename,
		Diff:         fmt.Sprintf("%s +%d -%d", filename, added, removed),
		AddedLines:   added,
		RemovedLines: removed,
	})
}

// findSimilar returns a short content window near the first 15 characters
// of the missing target, to help the caller correct its old_str.
func findSimilar(content, target string) string {
	if len(target) < 10 {
		return ""
	}
	prefix := target
	if len(prefix) > 15 {
		prefix = prefix[:15]
	}
	idx := strings.Index(content, prefix)
	if idx < 0 {
		return ""
	}
	start := idx - 20
	if start < 0 {
		start = 0
	}
	end := idx + 200
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}

// diffStats derives added/removed line counts from the line-count delta
// between the replaced and replacement strings. An edit that changes
// content without changing the line count still reports the number of
// differing lines on both sides, so change summaries are never empty.
func diffStats(oldStr, newStr string) (added, removed int) {
	oldLines := strings.Split(oldStr, "\n")
	newLines := strings.Split(newStr, "\n")

	if len(newLines) > len(oldLines) {
		added = len(newLines) - len(oldLines)
	}
	if len(oldLines) > len(newLines) {
		removed = len(oldLines) - len(newLines)
	}

	if added == 0 && removed == 0 && oldStr != newStr {
		changed := 0
		for i := range oldLines {
			if oldLines[i] != newLines[i] {
				changed++
			}
		}
		if changed == 0 {
			changed = 1
		}
		added, removed = changed, changed
	}
	return added, removed
}
