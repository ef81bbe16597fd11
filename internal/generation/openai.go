package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-image-translator/internal/attachment"
	"go-image-translator/internal/script"
)

// OpenAIEngine talks to an OpenAI-compatible chat completions endpoint.
type OpenAIEngine struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewOpenAIEngine(apiKey, model, baseURL string, timeout time.Duration) *OpenAIEngine {
	return &OpenAIEngine{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (e *OpenAIEngine) TranscribeImage(ctx context.Context, att *attachment.DecodedAttachment) (string, error) {
	content := []any{
		map[string]any{"type": "text", "text": imagePrompt},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": att.DataURL(), "detail": "high"}},
	}
	return e.complete(ctx, content)
}

func (e *OpenAIEngine) TranslateText(ctx context.Context, text string, source script.Label) (string, error) {
	content := []any{
		map[string]any{"type": "text", "text": textPrompt(text, source)},
	}
	return e.complete(ctx, content)
}

func (e *OpenAIEngine) complete(ctx context.Context, userContent []any) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("generation API key is empty")
	}

	body := map[string]any{
		"model": e.model,
		"messages": []any{
			map[string]any{"role": "user", "content": userContent},
		},
		"temperature": 0,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// Quota/auth/rate-limit detail goes back to the caller untouched.
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("generation: empty response")
	}
	return strings.TrimSpace(raw.Choices[0].Message.Content), nil
}
