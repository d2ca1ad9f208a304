package llm

import "context"

// Purposes recorded on each generation request.
const (
	PurposeHint        = "hint"
	PurposeExplanation = "explanation"

	purposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx so the retry and recording layers can label the
// call without widening Request.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if p, _ := ctx.Value(purposeKey{}).(string); p != "" {
		return p
	}
	return purposeUnknown
}
