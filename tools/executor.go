// Tool Executor - validated, panic-contained dispatch over the registry.
//
// Information Hiding:
// - Dispatch and validation sequencing hidden
// - Panic containment hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Executor executes named tool calls against a registry. It never lets a
// failure escape: unknown tools, validation failures, tool errors, and
// panics all come back as failed ToolResults, because every tool call in
// the conversation must receive an answer document.
//
// There is no retry layer. Each tool bounds its own latency and the loop
// depends on a single execution staying within that bound.
type Executor struct {
	registry *Registry
	changes  *ChangeLog
}

// NewExecutor creates an executor over the given registry and change log.
func NewExecutor(registry *Registry, changes *ChangeLog) *Executor {
	return &Executor{registry: registry, changes: changes}
}

// Changes returns the file change log shared with the mutating tools.
func (e *Executor) Changes() *ChangeLog {
	return e.changes
}

// Execute runs one named tool call and returns its result. The returned
// ToolResult is always usable: call Document() for the conversation answer
// and Success() for the structural outcome flag.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) (result ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResultf("tool '%s' panicked: %v", name, r)
		}
	}()

	tool, ok := e.registry.Get(name)
	if !ok {
		return FailureResultf("unknown tool: %s", name)
	}

	if err := tool.Validate(args); err != nil {
		return FailureResult(fmt.Errorf("validation failed: %w", err))
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return FailureResult(fmt.Errorf("tool '%s' failed: %w", name, err))
	}
	return res
}
