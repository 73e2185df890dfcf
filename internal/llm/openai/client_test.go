package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"errorlens-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestAnalyzeScreenshotSendsImageAndParsesReply(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"error_title\":\"Boom\"}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", "gpt-5", time.Second, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	reply, err := client.AnalyzeScreenshot(context.Background(), llm.ScreenshotInput{MediaType: "image/png", Base64Data: "QUJD"})
	if err != nil {
		t.Fatalf("AnalyzeScreenshot: %v", err)
	}
	if reply != `{"error_title":"Boom"}` {
		t.Fatalf("unexpected reply %q", reply)
	}

	if _, ok := captured["temperature"]; ok {
		t.Fatalf("gpt-5 requests must omit temperature")
	}
	if captured["max_completion_tokens"] != float64(2048) {
		t.Fatalf("unexpected max_completion_tokens %v", captured["max_completion_tokens"])
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured["response_format"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %v", user["content"])
	}
	image, _ := parts[1].(map[string]any)
	url, _ := image["image_url"].(map[string]any)
	if url["url"] != "data:image/png;base64,QUJD" {
		t.Fatalf("unexpected image url %v", url["url"])
	}
}

func TestAnalyzeScreenshotSetsTemperatureForOtherModels(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	client, _ := NewClient("sk-test", "gpt-4o", time.Second, WithBaseURL(srv.URL))
	if _, err := client.AnalyzeScreenshot(context.Background(), llm.ScreenshotInput{Base64Data: "QUJD"}); err != nil {
		t.Fatalf("AnalyzeScreenshot: %v", err)
	}
	if captured["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %v", captured["temperature"])
	}
}

func TestAnalyzeScreenshotErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "provider error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key","type":"invalid_request_error"}}`, wantErr: "bad key"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "missing choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantErr: "no response"},
		{name: "bad json", status: http.StatusBadGateway, body: `<html>`, wantErr: "status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, _ := NewClient("sk-test", "gpt-5", time.Second, WithBaseURL(srv.URL))
			_, err := client.AnalyzeScreenshot(context.Background(), llm.ScreenshotInput{Base64Data: "QUJD"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAnalyzeScreenshotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, _ := NewClient("sk-test", "gpt-5", 50*time.Millisecond, WithBaseURL(srv.URL))
	_, err := client.AnalyzeScreenshot(context.Background(), llm.ScreenshotInput{Base64Data: "QUJD"})
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-5", 0); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient("sk", " ", 0); err == nil {
		t.Fatalf("expected missing model error")
	}
}
