package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"errorlens-backend/internal/analyses"
	"errorlens-backend/internal/llm"
	anthropicllm "errorlens-backend/internal/llm/anthropic"
	openai "errorlens-backend/internal/llm/openai"
	"errorlens-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	imagePath := flag.String("image", "", "Path to screenshot file (png or jpeg)")
	outPath := flag.String("out", "", "Path to write normalized JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (openai|anthropic)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	showRaw := flag.Bool("raw", false, "Print the raw model reply to stderr")
	flag.Parse()

	if strings.TrimSpace(*imagePath) == "" {
		exitErr("image path is required")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		exitErr(fmt.Sprintf("read image: %v", err))
	}
	if len(data) > analyses.MaxUploadBytes {
		exitErr(analyses.ReasonFileTooLarge)
	}
	mediaType := mimetype.Detect(data).String()
	if mediaType != "image/png" && mediaType != "image/jpeg" {
		exitErr(analyses.ReasonUnsupported)
	}

	client, err := buildClient(cfg, *provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+5*time.Second)
	defer cancel()

	fmt.Fprintf(os.Stderr, "prompt %s (sha256 %s) via %s/%s\n", llm.PromptVersion, llm.PromptHash(), *provider, *model)
	reply, err := client.AnalyzeScreenshot(ctx, llm.ScreenshotInput{
		MediaType:  mediaType,
		Base64Data: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		exitErr(fmt.Sprintf("llm analyze: %v", err))
	}
	if *showRaw {
		fmt.Fprintln(os.Stderr, reply)
	}

	resp, err := analyses.NormalizeModelReply([]byte(reply))
	if err != nil {
		exitErr(fmt.Sprintf("normalize reply: %v", err))
	}

	pretty, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func buildClient(cfg config.Config, provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, model, cfg.LLMTimeout)
	case config.ProviderAnthropic, "claude":
		return anthropicllm.NewClient(cfg.AnthropicAPIKey, model, cfg.LLMTimeout)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
