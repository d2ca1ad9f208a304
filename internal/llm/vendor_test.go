package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider, name, want string
	}{
		{ProviderAnthropic, "claude-haiku", "claude-haiku-4-5-20251001"},
		{ProviderAnthropic, "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{ProviderGemini, "gemini-flash", "gemini-2.0-flash"},
		{ProviderGemini, "claude-haiku", "claude-haiku"},
		{ProviderOpenAI, "gpt-4o-mini", "gpt-4o-mini"},
		{ProviderOpenRouter, "gemini-flash", "gemini-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.provider, tt.name); got != tt.want {
			t.Errorf("resolveModel(%s, %s) = %s, want %s", tt.provider, tt.name, got, tt.want)
		}
	}
}

func TestFinish(t *testing.T) {
	req := Request{Schema: hintTestSchema}

	resp, err := finish(req, completion{text: `{"hint":"h"}`, usage: Usage{InputTokens: 3, OutputTokens: 2}, model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Usage.TotalTokens != 5 || resp.StopReason != StopEnd || resp.Model != "m" {
		t.Errorf("resp = %+v", resp)
	}

	var inv *ErrInvalidResponse
	if _, err := finish(req, completion{}); !errors.As(err, &inv) {
		t.Errorf("empty completion: %v", err)
	}
	var mt *ErrMaxTokensExceeded
	if _, err := finish(req, completion{text: `{"hi`, stop: StopMaxTokens}); !errors.As(err, &mt) {
		t.Errorf("truncated: %v", err)
	}

	// Without a schema, truncated free text is still returned.
	resp, err = finish(Request{}, completion{text: "plain words", stop: StopMaxTokens})
	if err != nil || resp.StopReason != StopMaxTokens {
		t.Errorf("free text: %+v, %v", resp, err)
	}
}

func TestPrepareDefaultsMaxTokens(t *testing.T) {
	if got := prepare(Request{}).MaxTokens; got != defaultMaxTokens {
		t.Errorf("MaxTokens = %d", got)
	}
	if got := prepare(Request{MaxTokens: 64}).MaxTokens; got != 64 {
		t.Errorf("MaxTokens = %d", got)
	}
}

func TestClassify(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		status    int
		retryable bool
		check     func(error) bool
	}{
		{429, true, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{500, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{0, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{400, false, func(err error) bool { var e *ErrRejected; return errors.As(err, &e) }},
		{404, false, func(err error) bool { var e *ErrRejected; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		err := classify(tt.status, 0, base)
		if !tt.check(err) {
			t.Errorf("status %d: got %T", tt.status, err)
		}
		if Retryable(err) != tt.retryable {
			t.Errorf("status %d: Retryable = %v", tt.status, Retryable(err))
		}
		if !errors.Is(err, base) {
			t.Errorf("status %d: cause lost", tt.status)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{&ErrMaxTokensExceeded{}, false},
		{&ErrInvalidResponse{Err: errors.New("x")}, true},
		{errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRetryAfterHeader(t *testing.T) {
	h := http.Header{}
	if retryAfterHeader(h) != 0 || retryAfterHeader(nil) != 0 {
		t.Error("missing header should give zero")
	}
	h.Set("Retry-After", "3")
	if got := retryAfterHeader(h); got != 3*time.Second {
		t.Errorf("got %s", got)
	}
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	if retryAfterHeader(h) != 0 {
		t.Error("HTTP-date form is ignored")
	}
}
