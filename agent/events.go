// Package agent implements the bounded tool-calling loop.
//
// The loop drives a conversation with an LLM provider, executes requested
// tools against a workspace, feeds results back, and emits a typed stream
// of progress events until the model stops requesting tools or the turn
// budget runs out.
//
// Information Hiding:
// - Conversation history management hidden
// - Event construction and channel lifecycle hidden
package agent

import (
	"encoding/json"
	"time"

	"github.com/richinex/theseus/tools"
)

// EventType identifies one kind of loop event.
type EventType string

// Event types emitted by the loop, in rough lifecycle order.
const (
	EventStart      EventType = "start"
	EventText       EventType = "text"
	EventToolStart  EventType = "tool_start"
	EventToolResult EventType = "tool_result"
	EventFileChange EventType = "file_change"
	EventUsage      EventType = "usage"
	EventTurn       EventType = "turn"
	EventWarning    EventType = "warning"
	EventCompaction EventType = "compaction"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

// Event is one immutable record of the loop's observable output stream.
// Only the fields relevant to the event's Type are populated; the caller
// owns any wire framing.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Turn      int       `json:"turn,omitempty"`

	// start
	Task      string `json:"task,omitempty"`
	Model     string `json:"model,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	MaxTurns  int    `json:"max_turns,omitempty"`

	// text, warning, compaction, error
	Content string `json:"content,omitempty"`

	// tool_start, tool_result
	Tool    string          `json:"tool,omitempty"`
	CallID  string          `json:"call_id,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
	Result  string          `json:"result,omitempty"`
	Success bool            `json:"success"`

	// file_change
	Change *tools.FileChange `json:"change,omitempty"`

	// usage
	InputTokens       uint32 `json:"input_tokens,omitempty"`
	OutputTokens      uint32 `json:"output_tokens,omitempty"`
	TotalInputTokens  uint32 `json:"total_input_tokens,omitempty"`
	TotalOutputTokens uint32 `json:"total_output_tokens,omitempty"`

	// turn
	ToolCallsThisTurn int          `json:"tool_calls_this_turn,omitempty"`
	TotalToolCalls    int          `json:"total_tool_calls,omitempty"`
	Summary           *TurnSummary `json:"summary,omitempty"`
	Display           string       `json:"display,omitempty"`

	// done, error (terminal)
	Turns       int                `json:"turns,omitempty"`
	Duration    time.Duration      `json:"duration,omitempty"`
	StopReason  string             `json:"stop_reason,omitempty"`
	FileChanges []tools.FileChange `json:"file_changes,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}
