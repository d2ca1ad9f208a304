package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/basil51/ai-school-sub003/internal/store"
)

type fakeRecorder struct {
	mu   sync.Mutex
	rows []store.LLMRequestEventData
	err  error
}

func (f *fakeRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, data)
	return f.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"hint":"try halves"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	rec := &fakeRecorder{}
	p := WithLogging(mock, ProviderMock, rec, nil, nil)

	ctx := WithPurpose(context.Background(), PurposeHint)
	req := Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "help"}},
		Schema:   &Schema{Name: "question-hint", Definition: map[string]any{"type": "object"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(rec.rows) != 1 {
		t.Fatalf("recorded %d rows, want 1", len(rec.rows))
	}
	row := rec.rows[0]
	if row.Purpose != PurposeHint || !row.Success || row.InputTokens != 12 || row.OutputTokens != 4 {
		t.Errorf("row = %+v", row)
	}
	if row.Provider != ProviderMock || row.Model != "mock" {
		t.Errorf("provider/model = %q/%q", row.Provider, row.Model)
	}
	for _, part := range []string{"[system]", "be brief", "[user]", "help", "[schema: question-hint]"} {
		if !strings.Contains(row.RequestBody, part) {
			t.Errorf("request body missing %q:\n%s", part, row.RequestBody)
		}
	}
}

func TestLoggingProvider_RecordsFailureAndSurvivesRecorderError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockProvider(MockResponse{Err: boom})
	rec := &fakeRecorder{err: errors.New("disk full")}
	p := WithLogging(mock, ProviderMock, rec, nil, nil)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(rec.rows) != 1 || rec.rows[0].Success || rec.rows[0].ErrorMessage != "boom" {
		t.Errorf("rows = %+v", rec.rows)
	}
	if rec.rows[0].Purpose != "unknown" {
		t.Errorf("Purpose = %q, want unknown", rec.rows[0].Purpose)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Error("zero timeout should return the provider unchanged")
	}
}
