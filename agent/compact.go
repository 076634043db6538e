// Context compaction - summarize the middle of an oversized history
// through the provider, keeping the opening message and the recent turns.

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/theseus/llm"
)

const (
	// compactThreshold is the estimated token count above which the
	// history is compacted before the next model call.
	compactThreshold = 150_000

	// keepRecent is how many trailing messages survive compaction intact
	// (two full turns: assistant response + tool results, twice).
	keepRecent = 4

	summaryMaxTokens = 1024
	summaryMaxLines  = 50
)

// estimateTokens is the len/4 heuristic used for budget checks only.
func estimateTokens(text string) int {
	return len(text)/4 + 1
}

// estimateHistoryTokens sums token estimates over every content item.
func estimateHistoryTokens(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		for _, item := range msg.Content {
			switch v := item.(type) {
			case llm.TextContent:
				total += estimateTokens(v.Text)
			case llm.ToolUseContent:
				total += estimateTokens(string(v.Input))
			case llm.ToolResultContent:
				total += estimateTokens(v.Content)
			}
		}
	}
	return total
}

// compactHistory replaces the middle of the history with a model-written
// summary bridged as a user/assistant exchange. Best-effort: if the
// summary call fails, a static bridge line stands in. The first message
// and the trailing turns are always preserved verbatim.
func compactHistory(ctx context.Context, provider llm.Provider, messages []llm.Message) []llm.Message {
	if len(messages) <= keepRecent+1 {
		return messages
	}

	first := messages[:1]
	recent := messages[len(messages)-keepRecent:]
	middle := messages[1 : len(messages)-keepRecent]
	if len(middle) == 0 {
		return messages
	}

	summary := summarizeMessages(ctx, provider, middle)

	compacted := make([]llm.Message, 0, len(first)+2+len(recent))
	compacted = append(compacted, first...)
	compacted = append(compacted,
		llm.UserMessage("[CONTEXT SUMMARY]\n"+summary),
		llm.AssistantMessage("Understood. Continuing."),
	)
	compacted = append(compacted, recent...)
	return compacted
}

// summarizeMessages asks the provider for a concise summary of the given
// messages, falling back to a static line on failure.
func summarizeMessages(ctx context.Context, provider llm.Provider, messages []llm.Message) string {
	var lines []string
	for _, msg := range messages {
		for _, item := range msg.Content {
			switch v := item.(type) {
			case llm.TextContent:
				lines = append(lines, fmt.Sprintf("[%s]: %s", msg.Role, clip(v.Text, 300)))
			case llm.ToolUseContent:
				lines = append(lines, fmt.Sprintf("[%s]: Called %s", msg.Role, v.Name))
			case llm.ToolResultContent:
				lines = append(lines, fmt.Sprintf("[tool_result]: %s", clip(v.Content, 200)))
			}
		}
	}
	if len(lines) > summaryMaxLines {
		lines = lines[:summaryMaxLines]
	}

	prompt := "Summarize this conversation concisely. Focus on tools called, " +
		"files modified, what was done.\n\n" + strings.Join(lines, "\n")

	resp, err := provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{llm.UserMessage(prompt)},
		MaxTokens:   summaryMaxTokens,
		Temperature: 0.1,
	})
	if err != nil || resp.Text() == "" {
		return "Previous conversation involved tool calls and modifications."
	}
	return resp.Text()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
