package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("period %q", "yearly"), http.StatusBadRequest},
		{"not found", NotFound("session", "abc"), http.StatusNotFound},
		{"transition", InvalidTransition("submit answer", "FEEDBACK"), http.StatusConflict},
		{"upstream", Upstream("event store", base), http.StatusServiceUnavailable},
		{"internal", Internal("oops", base), http.StatusInternalServerError},
		{"plain", base, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("lesson", "l1")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := Upstream("event store", base)
	if !errors.Is(err, base) {
		t.Error("Upstream error should unwrap to its cause")
	}
	if got := err.Error(); got != "event store unavailable: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, KindUpstream) {
		t.Error("Is(KindUpstream) = false")
	}
	if Is(nil, KindUpstream) {
		t.Error("Is(nil) = true")
	}
}

func TestCode(t *testing.T) {
	if got := InvalidTransition("hint", "COMPLETED").Code(); got != "INVALID_TRANSITION" {
		t.Errorf("Code = %q", got)
	}
}
