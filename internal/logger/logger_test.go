package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want []any
	}{
		{"empty", nil, nil},
		{"plain", []any{"student_id", "s1"}, []any{"student_id", "s1"}},
		{"api key", []any{"api_key", "sk-123"}, []any{"api_key", redacted}},
		{"mixed case", []any{"Authorization", "Bearer x"}, []any{"Authorization", redacted}},
		{"dangling key", []any{"a", 1, "b"}, []any{"a", 1, "b"}},
		{"non-string key", []any{42, "v"}, []any{"42", "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeKVs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("kv[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoggerWithRedacts(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("token", "abc").Info("hello", "student_id", "s1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["token"] != redacted {
		t.Errorf("token = %v, want %q", fields["token"], redacted)
	}
	if fields["student_id"] != "s1" {
		t.Errorf("student_id = %v, want s1", fields["student_id"])
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Nop()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}
