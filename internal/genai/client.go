// Package genai calls a hosted chat-completions API to propose quiz
// questions from source content, and validates the model's output into the
// internal question shape.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

// UpstreamError wraps a failure reaching or reading the generation service.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "generation service: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Options control one generation request. An omitted Count defaults to 5;
// any explicit value is clamped to [1,50]. Difficulty defaults to "medium"
// and Types to multiple_choice.
type Options struct {
	Count              int      `json:"count"`
	Difficulty         string   `json:"difficulty"`
	Types              []string `json:"types"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
}

func (o Options) normalized() Options {
	if o.Count == 0 {
		o.Count = 5
	}
	if o.Count < 1 {
		o.Count = 1
	}
	if o.Count > 50 {
		o.Count = 50
	}
	if o.Difficulty == "" {
		o.Difficulty = "medium"
	}
	if len(o.Types) == 0 {
		o.Types = []string{quiz.TypeMultipleChoice}
	}
	return o
}

// Generator produces candidate questions from source content.
type Generator interface {
	Generate(ctx context.Context, content string, opts Options) ([]quiz.GeneratedQuestion, error)
}

type Config struct {
	APIKey  string
	BaseURL string // e.g. https://api.openai.com
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	model   string
}

func New(cfg Config) *Client {
	h := &http.Client{}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{http: h, apiKey: cfg.APIKey, baseURL: base, model: model}
}

func (c *Client) Generate(ctx context.Context, content string, opts Options) ([]quiz.GeneratedQuestion, error) {
	opts = opts.normalized()
	text, err := c.complete(ctx, buildPrompt(content, opts))
	if err != nil {
		return nil, err
	}
	return ParseQuestions(text, opts.Count)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  2000,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", &UpstreamError{Err: fmt.Errorf("%s: %s", res.Status, bytes.TrimSpace(msg))}
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", &UpstreamError{Err: err}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &UpstreamError{Err: errors.New("empty completion")}
	}
	return out.Choices[0].Message.Content, nil
}
