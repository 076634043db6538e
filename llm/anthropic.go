// Anthropic Provider implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Content block conversion to and from tagged content items

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client: client,
		model:  model,
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends a Messages API request with native tool use.
func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    convertToAnthropicMessages(req.Messages),
		Temperature: anthropic.Float(float64(req.Temperature)),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if len(req.Tools) > 0 {
		params.Tools = convertToAnthropicTools(req.Tools)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("message request failed: %w", err)
	}

	var content []ContentItem
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content = append(content, TextContent{Text: variant.Text})
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(variant.Input)
			content = append(content, ToolUseContent{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: inputJSON,
			})
		}
	}

	var usage *TokenUsage
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		usage = &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return Response{
		Content:    content,
		StopReason: string(message.StopReason),
		Usage:      usage,
	}, nil
}

// convertToAnthropicMessages converts history messages to Anthropic params.
func convertToAnthropicMessages(messages []Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for _, msg := range messages {
		param := anthropic.MessageParam{
			Role: anthropic.MessageParamRoleUser,
		}
		if msg.Role == RoleAssistant {
			param.Role = anthropic.MessageParamRoleAssistant
		}

		for _, item := range msg.Content {
			switch v := item.(type) {
			case TextContent:
				param.Content = append(param.Content, anthropic.NewTextBlock(v.Text))
			case ToolUseContent:
				var input map[string]interface{}
				_ = json.Unmarshal(v.Input, &input)
				param.Content = append(param.Content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    v.ID,
						Name:  v.Name,
						Input: input,
					},
				})
			case ToolResultContent:
				param.Content = append(param.Content,
					anthropic.NewToolResultBlock(v.CallID, v.Content, v.IsError))
			}
		}

		out = append(out, param)
	}

	return out
}

// convertToAnthropicTools converts tool definitions to Anthropic format.
func convertToAnthropicTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		properties, _ := t.InputSchema["properties"].(map[string]interface{})
		required, _ := t.InputSchema["required"].([]string)

		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return result
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
