// Package chat wraps OpenAI chat and vision completions.
package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
)

const (
	// Model is the OpenAI model used for chat and vision completions.
	Model = openai.ChatModelGPT4o

	// DefaultVisionPrompt is used when an image arrives without user text.
	DefaultVisionPrompt = "Analyze this technical diagram and provide detailed information about what you see."

	systemPrompt = "You are a helpful technical support assistant."

	chatMaxTokens   = 2000
	visionMaxTokens = 1500
	temperature     = 0.7
)

// ErrCompletionFailed wraps external completion failures. No retry policy:
// callers treat it as terminal for the request.
var ErrCompletionFailed = errors.New("completion failed")

// Role is the closed set of chat message roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// Client issues chat and vision completion calls.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a completion client. An empty model uses the default.
func NewClient(client *openai.Client, model string) *Client {
	if model == "" {
		model = Model
	}
	return &Client{client: client, model: model}
}

// Complete produces one assistant reply for the given messages. When context
// is non-empty it is folded into the system instruction, never sent as a
// separate message.
func (c *Client) Complete(ctx context.Context, messages []Message, contextText string) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	params = append(params, openai.SystemMessage(buildSystemPrompt(contextText)))

	for _, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    params,
		Model:       c.model,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(chatMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "No response generated", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// AnalyzeImage runs a vision completion over inline image data with the given
// instruction. An empty prompt uses DefaultVisionPrompt.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if prompt == "" {
		prompt = DefaultVisionPrompt
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: DataURL(image, mimeType),
				}),
			}),
		},
		Model:     c.model,
		MaxTokens: openai.Int(visionMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "No analysis generated", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// DataURL encodes image bytes as an inline data URL for vision calls.
func DataURL(image []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
}

// buildSystemPrompt assembles the system instruction, inlining retrieved
// context when present.
func buildSystemPrompt(contextText string) string {
	if contextText == "" {
		return systemPrompt
	}
	return fmt.Sprintf("%s Use the following context to answer the user's question: %s",
		systemPrompt, contextText)
}
