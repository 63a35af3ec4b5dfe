// Package gemini implements the llm.Client interface against the
// Google Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legal-backend/internal/llm"
	"legal-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const maxAttempts = 3

// Client calls the Gemini generateContent endpoint with retry on
// transient failures.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client

	// backoff returns the delay before retry attempt n (1-based).
	backoff func(attempt int) time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBackoff overrides the retry delay schedule, used in tests.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = f }
}

// New builds a Client for the given API key and model name. The timeout
// bounds each individual request attempt.
func New(apiKey, model string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt to the model and returns the generated text.
// Requests that fail with 429, a 5xx status, or a timeout are retried up
// to three times with exponential backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &llm.GenerationError{Kind: llm.KindInvalidInput, Message: "empty prompt"}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			telemetry.Warn("gemini.retry", map[string]any{
				"attempt": attempt,
				"error":   lastErr.Error(),
			})
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return "", &llm.GenerationError{Kind: llm.KindTimeout, Message: "request canceled", Err: ctx.Err()}
			}
		}

		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     0.1,
			MaxOutputTokens: 4000,
		},
	})
	if err != nil {
		return "", &llm.GenerationError{Kind: llm.KindInvalidInput, Message: "encode request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &llm.GenerationError{Kind: llm.KindInvalidInput, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &llm.GenerationError{Kind: llm.KindTimeout, Message: "gemini request timed out", Err: err}
		}
		return "", &llm.GenerationError{Kind: llm.KindServiceError, Message: "gemini request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &llm.GenerationError{Kind: llm.KindServiceError, Message: "read gemini response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", &llm.GenerationError{
			Kind:    llm.KindServiceError,
			Message: fmt.Sprintf("gemini returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return "", &llm.GenerationError{
			Kind:    llm.KindInvalidInput,
			Message: fmt.Sprintf("gemini rejected request with status %d", resp.StatusCode),
		}
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &llm.GenerationError{Kind: llm.KindServiceError, Message: "decode gemini response", Err: err}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &llm.GenerationError{Kind: llm.KindServiceError, Message: "gemini returned no candidates"}
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", &llm.GenerationError{Kind: llm.KindServiceError, Message: "gemini returned empty text"}
	}
	return text, nil
}

// retryable reports whether the failure is worth another attempt.
// Timeouts, rate limits and upstream 5xx errors are transient; request
// construction and validation errors are not.
func retryable(err error) bool {
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		return false
	}
	return genErr.Kind == llm.KindTimeout || genErr.Kind == llm.KindServiceError
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
