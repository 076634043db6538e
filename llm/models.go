// Package llm provides shared data models for LLM providers.
package llm

import "encoding/json"

// ContentItem is one item in a message's content sequence. Exactly three
// variants exist: TextContent, ToolUseContent, and ToolResultContent.
// The sealed interface forces consumers to switch exhaustively over the
// variants instead of probing loosely typed maps for fields.
type ContentItem interface {
	contentItem()
}

// TextContent is plain assistant or user text.
type TextContent struct {
	Text string `json:"text"`
}

// ToolUseContent is a tool call requested by the model.
type ToolUseContent struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultContent answers a prior tool call.
type ToolResultContent struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

func (TextContent) contentItem()       {}
func (ToolUseContent) contentItem()    {}
func (ToolResultContent) contentItem() {}

// Message roles. System text travels on the Request, not as a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation history.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentItem `json:"content"`
}

// UserMessage creates a user message with a single text item.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentItem{TextContent{Text: text}}}
}

// AssistantMessage creates an assistant message with a single text item.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentItem{TextContent{Text: text}}}
}

// ToolResultsMessage creates the user message that answers a turn's tool calls.
func ToolResultsMessage(results []ToolResultContent) Message {
	content := make([]ContentItem, len(results))
	for i, r := range results {
		content[i] = r
	}
	return Message{Role: RoleUser, Content: content}
}

// Text concatenates all text items in the message.
func (m Message) Text() string {
	var out string
	for _, item := range m.Content {
		if t, ok := item.(TextContent); ok {
			out += t.Text
		}
	}
	return out
}

// ToolDefinition defines a tool that the LLM can call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema
}

// Request is a single model-service call: the full history plus the tool
// catalog and system instructions.
type Request struct {
	System      string
	Messages    []Message
	Tools       []ToolDefinition
	MaxTokens   uint32
	Temperature float32
}

// Response is the model's reply: content items in the order the model
// produced them, a stop indicator, and token usage when reported.
type Response struct {
	Content    []ContentItem
	StopReason string
	Usage      *TokenUsage
}

// Text concatenates all text items in the response.
func (r Response) Text() string {
	var out string
	for _, item := range r.Content {
		if t, ok := item.(TextContent); ok {
			out += t.Text
		}
	}
	return out
}

// ToolUses returns the tool calls requested by the response, in order.
func (r Response) ToolUses() []ToolUseContent {
	var uses []ToolUseContent
	for _, item := range r.Content {
		if u, ok := item.(ToolUseContent); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}
