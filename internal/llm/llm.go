package llm

import (
	"context"
	"errors"
	"strings"
)

// Client abstracts vision-capable model providers.
type Client interface {
	// AnalyzeScreenshot returns the raw text of the model reply.
	AnalyzeScreenshot(ctx context.Context, input ScreenshotInput) (string, error)
}

// ScreenshotInput is a base64-encoded image with its media type.
type ScreenshotInput struct {
	MediaType  string
	Base64Data string
}

// DataURL renders the image as a data: URL.
func (in ScreenshotInput) DataURL() string {
	return "data:" + in.NormalizedMediaType() + ";base64," + in.Base64Data
}

// NormalizedMediaType returns the media type, defaulting to image/jpeg.
func (in ScreenshotInput) NormalizedMediaType() string {
	mt := strings.ToLower(strings.TrimSpace(in.MediaType))
	if mt == "" {
		return "image/jpeg"
	}
	return mt
}

var (
	// ErrNotImplemented is returned by the placeholder client.
	ErrNotImplemented = errors.New("LLM not implemented")
	// ErrEmptyReply is returned when the provider answers with no text.
	ErrEmptyReply = errors.New("no response from model")
)

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// AnalyzeScreenshot returns ErrNotImplemented.
func (PlaceholderClient) AnalyzeScreenshot(ctx context.Context, input ScreenshotInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
