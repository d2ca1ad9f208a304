package llm

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var hintTestSchema = &Schema{
	Name: "test-hint",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{"type": "string"},
		},
		"required":             []string{"hint"},
		"additionalProperties": false,
	},
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 12},
	}
}

func anthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_Hint(t *testing.T) {
	var body string
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"hint":"Compare the denominators."}`, "end_turn"))
	})

	resp, err := p.Generate(t.Context(), Request{
		System:   "You are a patient tutor.",
		Messages: []Message{{Role: RoleUser, Content: "Give hint 1."}},
		Schema:   hintTestSchema,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 62 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop = %q", resp.StopReason)
	}
	if !strings.Contains(body, `"max_tokens":512`) {
		t.Errorf("default max tokens not sent: %s", body)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
	}{
		{
			name: "rate limit with retry-after",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "7")
				anthropicError(w, http.StatusTooManyRequests, "rate_limit_error")
			},
			check: func(err error) bool {
				var rl *ErrRateLimit
				return errors.As(err, &rl) && rl.RetryAfter == 7*time.Second
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				anthropicError(w, http.StatusInternalServerError, "api_error")
			},
			check: func(err error) bool {
				var un *ErrProviderUnavailable
				return errors.As(err, &un)
			},
		},
		{
			name: "bad key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				anthropicError(w, http.StatusUnauthorized, "authentication_error")
			},
			check: func(err error) bool {
				var rej *ErrRejected
				return errors.As(err, &rej) && rej.Status == http.StatusUnauthorized && !Retryable(err)
			},
		},
		{
			name: "truncated structured output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(anthropicMessage(`{"hint":"Compare`, "max_tokens"))
			},
			check: func(err error) bool {
				var mt *ErrMaxTokensExceeded
				return errors.As(err, &mt)
			},
		},
		{
			name: "off-schema output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(anthropicMessage(`{"answer":"2/4"}`, "end_turn"))
			},
			check: func(err error) bool {
				var inv *ErrInvalidResponse
				return errors.As(err, &inv)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, tt.handler)
			_, err := p.Generate(t.Context(), Request{
				Messages: []Message{{Role: RoleUser, Content: "hint please"}},
				Schema:   hintTestSchema,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}
}
