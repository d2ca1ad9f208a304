package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"hint":"one"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}})
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})

	ctx := WithPurpose(context.Background(), PurposeHint)
	resp, err := mock.Generate(ctx, Request{System: "sys"})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"hint":"one"}` || resp.Usage.InputTokens != 10 || resp.Model != "mock" || resp.StopReason != StopEnd {
		t.Errorf("resp = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Errorf("second call: %v", err)
	}
	var un *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &un) {
		t.Errorf("exhausted script: %v", err)
	}

	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %+v", mock.Calls)
	}
	want := []string{PurposeHint, "unknown", "unknown"}
	for i, p := range want {
		if mock.Purposes[i] != p {
			t.Errorf("Purposes[%d] = %q, want %q", i, mock.Purposes[i], p)
		}
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("PurposeFrom(empty) = %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeExplanation)); p != PurposeExplanation {
		t.Fatalf("PurposeFrom = %q", p)
	}
}
