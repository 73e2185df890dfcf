package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"errorlens-backend/internal/llm"
	"errorlens-backend/internal/shared/telemetry"
)

const defaultTimeout = 120 * time.Second

// Client implements llm.Client using the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

// NewClient constructs a new Anthropic client. A non-positive timeout uses 120s.
// Extra request options are appended after the defaults.
func NewClient(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)
	return &Client{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// AnalyzeScreenshot sends the image with the fixed system prompt and returns the reply text.
func (c *Client) AnalyzeScreenshot(ctx context.Context, input llm.ScreenshotInput) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: llm.MaxCompletionTokens,
		System: []anthropic.TextBlockParam{
			{Text: llm.SystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(input.NormalizedMediaType(), input.Base64Data),
				anthropic.NewTextBlock(llm.UserInstruction),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":       "anthropic",
		"model":          c.model,
		"prompt_version": llm.PromptVersion,
		"input_tokens":   message.Usage.InputTokens,
		"output_tokens":  message.Usage.OutputTokens,
	})

	for _, block := range message.Content {
		if block.Type == "text" {
			text := strings.TrimSpace(block.Text)
			if text == "" {
				return "", llm.ErrEmptyReply
			}
			return text, nil
		}
	}
	return "", llm.ErrEmptyReply
}

var _ llm.Client = (*Client)(nil)
