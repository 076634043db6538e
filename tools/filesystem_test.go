package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestReadFileToolSmallFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "small.txt", "alpha\nbeta\ngamma\n")

	tool := NewReadFileTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"small.txt"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out readFileOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.TotalLines != 3 {
		t.Errorf("expected 3 lines, got %d", out.TotalLines)
	}
	if out.Truncated {
		t.Error("small file should not be truncated")
	}
	if !strings.Contains(out.Content, "   1 | alpha") {
		t.Errorf("expected numbered first line, got %q", out.Content)
	}
	if !strings.Contains(out.Content, "   3 | gamma") {
		t.Errorf("expected numbered last line, got %q", out.Content)
	}
}

func TestReadFileToolLargeFileHeadTail(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 1; i <= 1000; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	writeTestFile(t, dir, "big.txt", b.String())

	tool := NewReadFileTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"big.txt"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out readFileOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !out.Truncated {
		t.Fatal("expected truncated view for 1000-line file")
	}
	if out.TruncatedStart != 101 || out.TruncatedEnd != 900 {
		t.Errorf("expected omitted range 101-900, got %d-%d", out.TruncatedStart, out.TruncatedEnd)
	}
	if !strings.Contains(out.Content, "line 100") {
		t.Error("expected head to include line 100")
	}
	if !strings.Contains(out.Content, "line 901") {
		t.Error("expected tail to include line 901")
	}
	if strings.Contains(out.Content, "| line 500") {
		t.Error("middle lines should be omitted")
	}
	if !strings.Contains(out.Content, "[800 lines truncated - use start_line/end_line to view 101-900]") {
		t.Errorf("expected omission marker, got %q", out.Content[:200])
	}
}

func TestReadFileToolLineRange(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	writeTestFile(t, dir, "ranged.txt", b.String())

	tool := NewReadFileTool(dir)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"ranged.txt","start_line":10,"end_line":12}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out readFileOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Lines != "10-12/50" {
		t.Errorf("expected range 10-12/50, got %q", out.Lines)
	}
	if strings.Contains(out.Content, "line 9\n") || strings.Contains(out.Content, "line 13") {
		t.Errorf("range should be exclusive of surrounding lines, got %q", out.Content)
	}
}

func TestReadFileToolErrors(t *testing.T) {
	dir := t.TempDir()
	tool := NewReadFileTool(dir)

	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "missing file",
			args: `{"path":"nope.txt"}`,
			want: "file not found",
		},
		{
			name: "directory",
			args: `{"path":"."}`,
			want: "not a file",
		},
		{
			name: "empty path",
			args: `{"path":""}`,
			want: "path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Execute(context.Background(), json.RawMessage(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success() {
				t.Fatal("expected failure result")
			}
			if !strings.Contains(res.Error.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, res.Error.Error())
			}
		})
	}
}

func TestWriteFileToolCreateAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	changes := NewChangeLog()
	tool := NewWriteFileTool(dir, changes)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"sub/new.txt","content":"one\ntwo\n"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out writeFileOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Action != "created" {
		t.Errorf("expected action 'created', got %q", out.Action)
	}
	if out.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", out.Lines)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sub", "new.txt"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("unexpected file content %q", string(data))
	}

	// Second write to the same path reports overwritten.
	res, err = tool.Execute(context.Background(), json.RawMessage(`{"path":"sub/new.txt","content":"three\n"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.Action != "overwritten" {
		t.Errorf("expected action 'overwritten', got %q", out.Action)
	}

	if changes.Len() != 2 {
		t.Errorf("expected 2 recorded changes, got %d", changes.Len())
	}
	tail := changes.Tail(1)
	if len(tail) != 1 || tail[0].Action != "overwritten" {
		t.Errorf("unexpected change tail: %+v", tail)
	}
}

func TestEditFileToolReplace(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "code.py", "def greet():\n    return 'hello'\n")
	changes := NewChangeLog()
	tool := NewEditFileTool(dir, changes)

	args := `{"path":"code.py","old_str":"return 'hello'","new_str":"return 'goodbye'"}`
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "code.py"))
	if !strings.Contains(string(data), "goodbye") {
		t.Errorf("edit not applied: %q", string(data))
	}

	var out editFileOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.AddedLines != 1 || out.RemovedLines != 1 {
		t.Errorf("expected +1 -1 for same-line-count edit, got +%d -%d", out.AddedLines, out.RemovedLines)
	}
	if out.Diff != "code.py +1 -1" {
		t.Errorf("unexpected diff string %q", out.Diff)
	}
	if changes.Len() != 1 {
		t.Errorf("expected 1 recorded change, got %d", changes.Len())
	}
}

func TestEditFileToolSecondApplyFails(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "code.py", "x = 1\n")
	tool := NewEditFileTool(dir, NewChangeLog())

	args := json.RawMessage(`{"path":"code.py","old_str":"x = 1","new_str":"x = 2"}`)
	res, _ := tool.Execute(context.Background(), args)
	if !res.Success() {
		t.Fatalf("first edit should succeed: %v", res.Error)
	}

	// The same edit again must fail: old_str no longer exists.
	res, _ = tool.Execute(context.Background(), args)
	if res.Success() {
		t.Fatal("expected second identical edit to fail")
	}
	if !strings.Contains(res.Error.Error(), "old_str not found") {
		t.Errorf("expected not-found error, got %q", res.Error.Error())
	}
}

func TestEditFileToolAmbiguous(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "dup.txt", "same\nsame\n")
	tool := NewEditFileTool(dir, NewChangeLog())

	res, _ := tool.Execute(context.Background(),
		json.RawMessage(`{"path":"dup.txt","old_str":"same","new_str":"other"}`))
	if res.Success() {
		t.Fatal("expected ambiguous edit to fail")
	}
	if !strings.Contains(res.Error.Error(), "found 2 times, must be unique") {
		t.Errorf("expected ambiguity error, got %q", res.Error.Error())
	}

	// File untouched.
	data, _ := os.ReadFile(filepath.Join(dir, "dup.txt"))
	if string(data) != "same\nsame\n" {
		t.Errorf("ambiguous edit must not modify the file, got %q", string(data))
	}
}

func TestDiffStats(t *testing.T) {
	tests := []struct {
		name    string
		oldStr  string
		newStr  string
		added   int
		removed int
	}{
		{"lines added", "a", "a\nb\nc", 2, 0},
		{"lines removed", "a\nb\nc", "a", 0, 2},
		{"same count different content", "a\nb", "a\nc", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffStats(tt.oldStr, tt.newStr)
			if added != tt.added || removed != tt.removed {
				t.Errorf("diffStats() = +%d -%d, want +%d -%d", added, removed, tt.added, tt.removed)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	if got := resolvePath("/ws", "rel/file.txt"); got != "/ws/rel/file.txt" {
		t.Errorf("relative path should join workspace, got %q", got)
	}
	if got := resolvePath("/ws", "/abs/file.txt"); got != "/abs/file.txt" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
	}
	for _, tt := range tests {
		if got := countLines(tt.content); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}
