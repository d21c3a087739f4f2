package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Generate 2 quiz questions") {
			t.Errorf("prompt missing count: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestClient_Generate(t *testing.T) {
	reply := `Sure! [{"type":"true_false","question":"Water boils at 100C at sea level.","correct":"true"},` +
		`{"type":"short_answer","question":"Chemical symbol for gold?","correct":"Au"},` +
		`{"type":"true_false","question":"Extra","correct":"false"}]`
	srv := completionServer(t, reply)
	defer srv.Close()

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	qs, err := c.Generate(context.Background(), "some source text", Options{Count: 2, Types: []string{"true_false", "short_answer"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("want output truncated to requested count, got %d", len(qs))
	}
	if qs[1].Correct != "Au" {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "content", Options{})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
}

func TestOptions_Normalized(t *testing.T) {
	o := Options{}.normalized()
	if o.Count != 5 || o.Difficulty != "medium" || len(o.Types) != 1 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if o := (Options{Count: 500}).normalized(); o.Count != 50 {
		t.Fatalf("count must clamp to 50, got %d", o.Count)
	}
	if o := (Options{Count: -3}).normalized(); o.Count != 1 {
		t.Fatalf("negative count must clamp to 1, got %d", o.Count)
	}
	if o := (Options{Count: 1}).normalized(); o.Count != 1 {
		t.Fatalf("explicit count of 1 must be kept, got %d", o.Count)
	}
}
