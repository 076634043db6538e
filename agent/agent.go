// Agent loop - the bounded state machine driving model calls and tool
// execution.
//
// Information Hiding:
// - Conversation history management hidden
// - Turn sequencing and termination hidden

package agent

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/richinex/theseus/llm"
	"github.com/richinex/theseus/tools"
)

const (
	// DefaultMaxTurns bounds the loop when no budget is configured.
	DefaultMaxTurns = 30

	defaultMaxTokens   = 16384
	defaultTemperature = 0.3

	// maxToolResultChars caps a tool result document before it enters
	// the conversation history.
	maxToolResultChars = 15000
	// maxResultPreview caps the result excerpt carried on tool_result events.
	maxResultPreview = 2000

	// fileChangeTail is how many trailing change entries terminal events carry.
	fileChangeTail = 20

	eventBufferSize = 64
)

const defaultSystemPrompt = `You are an expert software engineer working in a Linux environment.
You have tools to read, write, and edit files, run shell commands, search code, and browse the web.

Guidelines:
1. Verify your work with tools, don't assume. Run code after writing it.
2. Use write_file for new files (complete content); use edit_file for a single precise change (old_str must be unique in the file).
3. When debugging: read the error, read the relevant file, make a targeted fix, verify.
4. When the task is complete, respond with your final answer without requesting more tools.
5. Be concise. Focus on actions, not explanations.`

// Logger receives loop diagnostics. It is configured per loop instance
// so concurrent loops can log independently.
type Logger interface {
	Logf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// Config configures one loop instance.
type Config struct {
	// Model is reported on events; empty means the provider's model.
	Model string
	// SystemPrompt overrides the default system instructions.
	SystemPrompt string
	// Workspace is the directory tools operate in; created if absent.
	Workspace string
	// MaxTurns is the turn budget; 0 means DefaultMaxTurns.
	MaxTurns int
	// MaxTokens and Temperature are the sampling parameters per model call.
	MaxTokens   uint32
	Temperature float32
	// Backend optionally serves web_search and web_fetch.
	Backend tools.SearchBackend
	// ShellTimeoutSecs overrides the execute_shell default timeout.
	ShellTimeoutSecs uint64
	// Logger receives diagnostics; nil disables them.
	Logger Logger
}

// Loop is one agent loop bound to a task workspace. A Loop runs one task
// at a time; independent instances with disjoint workspaces may run
// concurrently.
type Loop struct {
	cfg      Config
	provider llm.Provider
	registry *tools.Registry
	executor *tools.Executor
	logger   Logger
}

// New creates a loop over the provider, provisioning the workspace and
// the standard tool set.
func New(cfg Config, provider llm.Provider) (*Loop, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("workspace is required")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Model == "" {
		cfg.Model = provider.Model()
	}

	if err := os.MkdirAll(cfg.Workspace, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	registry, changes, err := tools.ForWorkspace(cfg.Workspace, tools.Options{
		ShellTimeoutSecs: cfg.ShellTimeoutSecs,
		Backend:          cfg.Backend,
	})
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Loop{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		executor: tools.NewExecutor(registry, changes),
		logger:   logger,
	}, nil
}

// Registry exposes the loop's tool registry for inspection.
func (l *Loop) Registry() *tools.Registry {
	return l.registry
}

// Run starts the loop for the task and returns its event stream. The
// channel carries exactly one terminal event (done or error) and is then
// closed.
func (l *Loop) Run(ctx context.Context, task string) <-chan Event {
	events := make(chan Event, eventBufferSize)
	go func() {
		defer close(events)
		l.run(ctx, task, events)
	}()
	return events
}

func (l *Loop) run(ctx context.Context, task string, events chan<- Event) {
	start := time.Now()
	detector := newRepeatDetector()
	catalog := l.definitions()

	history := []llm.Message{llm.UserMessage(task)}

	if !l.emit(ctx, events, Event{
		Type:      EventStart,
		Timestamp: time.Now(),
		Task:      clip(task, 500),
		Model:     l.cfg.Model,
		Workspace: l.cfg.Workspace,
		MaxTurns:  l.cfg.MaxTurns,
	}) {
		return
	}

	totalToolCalls := 0
	var totalInputTokens, totalOutputTokens uint32

	for turn := 1; turn <= l.cfg.MaxTurns; turn++ {
		// Cancellation is the caller's abort path; stop before spending
		// another model call on it.
		if ctx.Err() != nil {
			l.logger.Logf("context cancelled at turn %d: %v", turn, ctx.Err())
			return
		}

		l.logger.Logf("turn %d/%d, history %d messages", turn, l.cfg.MaxTurns, len(history))

		if estimateHistoryTokens(history) > compactThreshold {
			before := len(history)
			history = compactHistory(ctx, l.provider, history)
			l.logger.Logf("compacted history: %d -> %d messages", before, len(history))
			if !l.emit(ctx, events, Event{
				Type:      EventCompaction,
				Timestamp: time.Now(),
				Turn:      turn,
				Content:   fmt.Sprintf("compacted history from %d to %d messages", before, len(history)),
			}) {
				return
			}
		}

		resp, err := l.provider.Generate(ctx, llm.Request{
			System:      l.cfg.SystemPrompt,
			Messages:    history,
			Tools:       catalog,
			MaxTokens:   l.cfg.MaxTokens,
			Temperature: l.cfg.Temperature,
		})
		if err != nil {
			// A failed model call is terminal. Retry policy belongs to
			// the transport, not this loop.
			l.logger.Logf("model call failed: %v", err)
			l.emit(ctx, events, Event{
				Type:           EventError,
				Timestamp:      time.Now(),
				Turn:           turn,
				Content:        fmt.Sprintf("model call failed: %v", err),
				Turns:          turn - 1,
				TotalToolCalls: totalToolCalls,
				Duration:       time.Since(start),
				FileChanges:    l.executor.Changes().Tail(fileChangeTail),
			})
			return
		}

		// Intent before effect: text and tool_start events go out in the
		// order the model produced the items, before any execution.
		for _, item := range resp.Content {
			switch v := item.(type) {
			case llm.TextContent:
				if v.Text != "" {
					if !l.emit(ctx, events, Event{Type: EventText, Timestamp: time.Now(), Turn: turn, Content: v.Text}) {
						return
					}
				}
			case llm.ToolUseContent:
				if !l.emit(ctx, events, Event{
					Type:      EventToolStart,
					Timestamp: time.Now(),
					Turn:      turn,
					Tool:      v.Name,
					CallID:    v.ID,
					Args:      v.Input,
				}) {
					return
				}
			}
		}

		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

		if resp.Usage != nil {
			totalInputTokens += resp.Usage.PromptTokens
			totalOutputTokens += resp.Usage.CompletionTokens
			if !l.emit(ctx, events, Event{
				Type:              EventUsage,
				Timestamp:         time.Now(),
				Turn:              turn,
				InputTokens:       resp.Usage.PromptTokens,
				OutputTokens:      resp.Usage.CompletionTokens,
				TotalInputTokens:  totalInputTokens,
				TotalOutputTokens: totalOutputTokens,
			}) {
				return
			}
		}

		toolUses := resp.ToolUses()
		if len(toolUses) == 0 {
			l.emit(ctx, events, Event{
				Type:           EventDone,
				Timestamp:      time.Now(),
				Turns:          turn,
				TotalToolCalls: totalToolCalls,
				Duration:       time.Since(start),
				StopReason:     resp.StopReason,
				FileChanges:    l.executor.Changes().Tail(fileChangeTail),
			})
			return
		}

		changesBefore := l.executor.Changes().Len()
		results := make([]llm.ToolResultContent, 0, len(toolUses))

		// Sequential execution in request order. Later calls in the same
		// turn may depend on the filesystem effects of earlier ones.
		for _, tu := range toolUses {
			totalToolCalls++
			detector.Observe(tu.Name, tu.Input)

			res := l.executor.Execute(ctx, tu.Name, tu.Input)
			doc := truncateResult(res.Document())

			if !l.emit(ctx, events, Event{
				Type:      EventToolResult,
				Timestamp: time.Now(),
				Turn:      turn,
				Tool:      tu.Name,
				CallID:    tu.ID,
				Result:    clip(doc, maxResultPreview),
				Success:   res.Success(),
			}) {
				return
			}

			results = append(results, llm.ToolResultContent{
				CallID:  tu.ID,
				Content: doc,
				IsError: !res.Success(),
			})
		}

		for _, change := range l.executor.Changes().Since(changesBefore) {
			c := change
			if !l.emit(ctx, events, Event{
				Type:      EventFileChange,
				Timestamp: time.Now(),
				Turn:      turn,
				Change:    &c,
			}) {
				return
			}
		}

		// One user message answers every call in the turn, appended only
		// after all of them complete.
		resultMsg := llm.ToolResultsMessage(results)
		if detector.Repeating() {
			notice := "You appear to be repeating the same tool calls. " +
				"Step back, reassess your approach, and try something different."
			l.logger.Logf("repeat pattern detected at turn %d", turn)
			if !l.emit(ctx, events, Event{
				Type:      EventWarning,
				Timestamp: time.Now(),
				Turn:      turn,
				Content:   notice,
			}) {
				return
			}
			resultMsg.Content = append(resultMsg.Content, llm.TextContent{Text: notice})
			detector.Reset()
		}
		history = append(history, resultMsg)

		summary := BuildTurnSummary(toolUses)
		if !l.emit(ctx, events, Event{
			Type:              EventTurn,
			Timestamp:         time.Now(),
			Turn:              turn,
			ToolCallsThisTurn: len(toolUses),
			TotalToolCalls:    totalToolCalls,
			Summary:           &summary,
			Display:           summary.Display,
		}) {
			return
		}
	}

	// Budget exhausted. A reported condition, not a crash; the caller may
	// resume with a fresh loop over the same workspace.
	l.emit(ctx, events, Event{
		Type:           EventError,
		Timestamp:      time.Now(),
		Content:        fmt.Sprintf("reached max turns (%d) without completion", l.cfg.MaxTurns),
		Turns:          l.cfg.MaxTurns,
		TotalToolCalls: totalToolCalls,
		Duration:       time.Since(start),
		FileChanges:    l.executor.Changes().Tail(fileChangeTail),
	})
}

// emit delivers an event unless the context is done. A false return means
// the consumer abandoned the stream; the loop must unwind so the channel
// closes and the goroutine exits.
func (l *Loop) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// definitions renders the registry as the model-facing tool catalog.
func (l *Loop) definitions() []llm.ToolDefinition {
	metas := l.registry.List()
	defs := make([]llm.ToolDefinition, len(metas))
	for i, m := range metas {
		defs[i] = llm.ToolDefinition{
			Name:        m.Name,
			Description: m.Description,
			InputSchema: m.InputSchema(),
		}
	}
	return defs
}

func truncateResult(doc string) string {
	if len(doc) <= maxToolResultChars {
		return doc
	}
	return doc[:maxToolResultChars] + "\n...[truncated]"
}

// Result is the aggregate outcome returned by RunSync.
type Result struct {
	Success        bool
	Turns          int
	TotalToolCalls int
	Duration       time.Duration
	FinalText      string
	Events         []Event
	FileChanges    []tools.FileChange
}

// RunSync drains the event stream internally and returns one aggregate
// result. It reuses Run and adds no semantics of its own.
func (l *Loop) RunSync(ctx context.Context, task string) Result {
	var (
		collected []Event
		lastText  string
		terminal  Event
	)

	for ev := range l.Run(ctx, task) {
		collected = append(collected, ev)
		if ev.Type == EventText {
			lastText = ev.Content
		}
		if ev.Terminal() {
			terminal = ev
		}
	}

	return Result{
		Success:        terminal.Type == EventDone,
		Turns:          terminal.Turns,
		TotalToolCalls: terminal.TotalToolCalls,
		Duration:       terminal.Duration,
		FinalText:      lastText,
		Events:         collected,
		FileChanges:    terminal.FileChanges,
	}
}
