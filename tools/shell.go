// Shell Command Executor Tool.
//
// Information Hiding:
// - Shell execution details hidden
// - Output capture and truncation hidden

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

const (
	// DefaultShellTimeoutSecs bounds a command's wall-clock time.
	DefaultShellTimeoutSecs = 120
	maxShellTimeoutSecs     = 600

	maxStdoutChars = 10000
	maxStderrChars = 5000
)

// ShellTool executes shell commands via sh -c in the workspace directory.
type ShellTool struct {
	BaseTool
	workspace   string
	timeoutSecs uint64
}

// NewShellTool creates a new shell tool rooted at the workspace.
func NewShellTool(workspace string, timeoutSecs uint64) *ShellTool {
	if timeoutSecs == 0 {
		timeoutSecs = DefaultShellTimeoutSecs
	}
	return &ShellTool{
		workspace:   workspace,
		timeoutSecs: timeoutSecs,
	}
}

// Metadata returns the tool metadata.
func (t *ShellTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: "execute_shell",
		Description: "Execute a shell command in the project workspace. " +
			"Commands run with sh -c. Use && to chain. Avoid interactive commands.",
		Parameters: []ToolParameter{
			{
				Name:        "command",
				ParamType:   "string",
				Description: "The shell command to execute",
				Required:    true,
			},
			{
				Name:        "timeout",
				ParamType:   "integer",
				Description: "Timeout in seconds (default: 120, max: 600)",
				Required:    false,
			},
		},
	}
}

type shellArgs struct {
	Command string `json:"command"`
	Timeout uint64 `json:"timeout"`
}

// Validate validates the tool arguments.
func (t *ShellTool) Validate(args json.RawMessage) error {
	var a shellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}

type shellOutput struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Execute runs the shell command. The subprocess is terminated when the
// timeout elapses; captured stdout and stderr are independently truncated
// with explicit markers, never silently dropped.
func (t *ShellTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a shellArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	if a.Command == "" {
		return FailureResultf("command cannot be empty"), nil
	}

	timeoutSecs := t.timeoutSecs
	if a.Timeout > 0 {
		timeoutSecs = a.Timeout
	}
	if timeoutSecs > maxShellTimeoutSecs {
		timeoutSecs = maxShellTimeoutSecs
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", a.Command)
	cmd.Dir = t.workspace

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return FailureResultf("command timed out after %d seconds", timeoutSecs), nil
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return FailureResult(fmt.Errorf("failed to execute command: %w", err)), nil
		}
	}

	out := truncateStdout(stdoutBuf.String())
	errOut := truncateStderr(stderrBuf.String())

	doc, jerr := json.Marshal(shellOutput{ExitCode: exitCode, Stdout: out, Stderr: errOut})
	if jerr != nil {
		return FailureResult(fmt.Errorf("failed to encode result: %w", jerr)), nil
	}
	return SuccessResult(string(doc)), nil
}

// truncateStdout keeps the head and tail of oversized stdout with a marker
// stating how many characters were dropped.
func truncateStdout(out string) string {
	if len(out) <= maxStdoutChars {
		return out
	}
	half := maxStdoutChars / 2
	dropped := len(out) - maxStdoutChars
	return out[:half] +
		fmt.Sprintf("\n...[%d chars truncated]...\n", dropped) +
		out[len(out)-half:]
}

// truncateStderr caps stderr with a trailing marker.
func truncateStderr(out string) string {
	if len(out) <= maxStderrChars {
		return out
	}
	return out[:maxStderrChars] + "\n...[truncated]"
}
