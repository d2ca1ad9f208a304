// Package llm generates hint and explanation text through one of several
// vendors. Every vendor sits behind Provider; NewProvider stacks timeout,
// retry and request recording on top.
package llm

import (
	"context"
	"encoding/json"
)

// Provider produces one completion per call.
type Provider interface {
	// Generate returns content that already passed req.Schema, when set.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, before any vendor-side routing.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured JSON using the vendor's native mode.
	// Nil means free text.
	Schema *Schema

	// MaxTokens caps the completion; zero means defaultMaxTokens.
	MaxTokens int

	// Temperature in [0, 1]; zero leaves the vendor default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema document plus the name vendors and the
// validator cache know it by. Names are kebab-case and unique per
// definition, e.g. "question-hint".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the validated JSON object, or the raw completion text
	// when the request had no Schema.
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports having served.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
