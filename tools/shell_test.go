package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Ignore known background goroutines from dependencies
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestShellToolValidation(t *testing.T) {
	tool := NewShellTool(t.TempDir(), 0)

	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{
			name:    "valid command",
			args:    `{"command":"echo hello"}`,
			wantErr: false,
		},
		{
			name:    "empty command",
			args:    `{"command":""}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			args:    `{invalid}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tool.Validate(json.RawMessage(tt.args))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShellToolExecute(t *testing.T) {
	tool := NewShellTool(t.TempDir(), 0)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"echo hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got error: %v", res.Error)
	}

	var out shellOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", out.ExitCode)
	}
	if !strings.Contains(out.Stdout, "hello") {
		t.Errorf("expected stdout to contain 'hello', got %q", out.Stdout)
	}
}

func TestShellToolNonZeroExit(t *testing.T) {
	tool := NewShellTool(t.TempDir(), 0)

	// A failing command is still a successful execution; the exit code
	// travels in the result document.
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"exit 3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success result for nonzero exit, got error: %v", res.Error)
	}

	var out shellOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", out.ExitCode)
	}
}

func TestShellToolCapturesStderr(t *testing.T) {
	tool := NewShellTool(t.TempDir(), 0)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"echo oops >&2"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out shellOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !strings.Contains(out.Stderr, "oops") {
		t.Errorf("expected stderr to contain 'oops', got %q", out.Stderr)
	}
}

func TestShellToolTimeout(t *testing.T) {
	tool := NewShellTool(t.TempDir(), 0)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"sleep 5","timeout":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success() {
		t.Fatal("expected failure result for timed-out command")
	}
	if !strings.Contains(res.Error.Error(), "timed out after 1 seconds") {
		t.Errorf("expected timeout message, got %q", res.Error.Error())
	}
}

func TestShellToolRunsInWorkspace(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellTool(dir, 0)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"pwd"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out shellOutput
	if err := json.Unmarshal([]byte(res.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !strings.Contains(out.Stdout, dir) {
		t.Errorf("expected pwd output to contain %q, got %q", dir, out.Stdout)
	}
}

func TestTruncateStdout(t *testing.T) {
	short := "hello"
	if got := truncateStdout(short); got != short {
		t.Errorf("short output should pass through, got %q", got)
	}

	long := strings.Repeat("x", maxStdoutChars+500)
	got := truncateStdout(long)
	if len(got) >= len(long) {
		t.Error("expected truncation to shrink output")
	}
	if !strings.Contains(got, "[500 chars truncated]") {
		t.Errorf("expected truncation marker with dropped count, got %q", got[4990:5050])
	}
	if !strings.HasPrefix(got, strings.Repeat("x", maxStdoutChars/2)) {
		t.Error("expected head to be preserved")
	}
	if !strings.HasSuffix(got, strings.Repeat("x", maxStdoutChars/2)) {
		t.Error("expected tail to be preserved")
	}
}

func TestTruncateStderr(t *testing.T) {
	long := strings.Repeat("e", maxStderrChars+100)
	got := truncateStderr(long)
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Errorf("expected trailing truncation marker")
	}
	if len(got) != maxStderrChars+len("\n...[truncated]") {
		t.Errorf("unexpected truncated length %d", len(got))
	}
}
