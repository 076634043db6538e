package llm

import (
	"encoding/json"
	"testing"
)

func TestMessageText(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Content: []ContentItem{
			TextContent{Text: "first "},
			ToolUseContent{ID: "1", Name: "x", Input: json.RawMessage(`{}`)},
			TextContent{Text: "second"},
		},
	}
	if got := msg.Text(); got != "first second" {
		t.Errorf("Text() = %q, want %q", got, "first second")
	}
}

func TestResponseToolUses(t *testing.T) {
	resp := Response{
		Content: []ContentItem{
			TextContent{Text: "thinking"},
			ToolUseContent{ID: "a", Name: "read_file", Input: json.RawMessage(`{"path":"x"}`)},
			ToolUseContent{ID: "b", Name: "write_file", Input: json.RawMessage(`{"path":"y"}`)},
		},
	}

	uses := resp.ToolUses()
	if len(uses) != 2 {
		t.Fatalf("expected 2 tool uses, got %d", len(uses))
	}
	if uses[0].ID != "a" || uses[1].ID != "b" {
		t.Error("tool uses must preserve response order")
	}
}

func TestResponseTextOnly(t *testing.T) {
	resp := Response{Content: []ContentItem{TextContent{Text: "answer"}}}
	if len(resp.ToolUses()) != 0 {
		t.Error("text-only response has no tool uses")
	}
	if resp.Text() != "answer" {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestToolResultsMessage(t *testing.T) {
	msg := ToolResultsMessage([]ToolResultContent{
		{CallID: "1", Content: "ok"},
		{CallID: "2", Content: `{"error":"bad"}`, IsError: true},
	})

	if msg.Role != RoleUser {
		t.Errorf("results message must have user role, got %q", msg.Role)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("expected 2 content items, got %d", len(msg.Content))
	}
	second, ok := msg.Content[1].(ToolResultContent)
	if !ok {
		t.Fatalf("expected tool result content, got %T", msg.Content[1])
	}
	if !second.IsError || second.CallID != "2" {
		t.Errorf("unexpected second result: %+v", second)
	}
}

func TestUserAndAssistantMessages(t *testing.T) {
	u := UserMessage("hi")
	if u.Role != RoleUser || u.Text() != "hi" {
		t.Errorf("unexpected user message: %+v", u)
	}
	a := AssistantMessage("hello")
	if a.Role != RoleAssistant || a.Text() != "hello" {
		t.Errorf("unexpected assistant message: %+v", a)
	}
}
