package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var explanationTestSchema = &Schema{
	Name: "test-explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation":  map[string]any{"type": "string", "minLength": 1},
			"steps":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"confidence":   map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"key_concepts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": 3},
			"kind":         map[string]any{"type": "string", "enum": []string{"concept", "procedure"}},
		},
		"required":             []string{"explanation", "steps"},
		"additionalProperties": false,
	},
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"minimal", `{"explanation":"Halve both.","steps":[]}`, true},
		{"full", `{"explanation":"x","steps":["a","b"],"confidence":0.75,"key_concepts":["halves"],"kind":"concept"}`, true},
		{"missing steps", `{"explanation":"x"}`, false},
		{"empty explanation", `{"explanation":"","steps":[]}`, false},
		{"step not a string", `{"explanation":"x","steps":[1]}`, false},
		{"confidence above one", `{"explanation":"x","steps":[],"confidence":1.5}`, false},
		{"too many concepts", `{"explanation":"x","steps":[],"key_concepts":["a","b","c","d"]}`, false},
		{"unknown enum", `{"explanation":"x","steps":[],"kind":"riddle"}`, false},
		{"extra property", `{"explanation":"x","steps":[],"answer":"2/4"}`, false},
		{"not JSON", `{explanation}`, false},
		{"trailing data", `{"explanation":"x","steps":[]} {}`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(explanationTestSchema, json.RawMessage(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("err = %v, want *ErrInvalidResponse", err)
			}
			if string(inv.Content) != tt.raw {
				t.Errorf("Content = %q", inv.Content)
			}
		})
	}
}

func TestValidateJSON_NilSchemaAcceptsAnything(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaRegistry_CompilesOnce(t *testing.T) {
	r := &schemaRegistry{compiled: make(map[string]*jsonschema.Schema)}
	first, err := r.get(hintTestSchema)
	if err != nil {
		t.Fatal(err)
	}
	again, err := r.get(hintTestSchema)
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Error("schema compiled twice")
	}

	broken := &Schema{Name: "test-broken", Definition: map[string]any{"type": 12}}
	if _, err := r.get(broken); err == nil {
		t.Error("expected compile error")
	}
	if len(r.compiled) != 1 {
		t.Errorf("registry holds %d schemas, want 1", len(r.compiled))
	}
}
