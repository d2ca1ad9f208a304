package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaRegistry compiles each Schema once, keyed by name. Two schemas
// sharing a name must share a definition.
type schemaRegistry struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

var schemas = &schemaRegistry{compiled: make(map[string]*jsonschema.Schema)}

// ValidateJSON checks raw against s. A nil s accepts anything; failures
// are *ErrInvalidResponse.
func ValidateJSON(s *Schema, raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	compiled, err := schemas.get(s)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("does not match %s: %w", s.Name, err)}
	}
	return nil
}

func (r *schemaRegistry) get(s *Schema) (*jsonschema.Schema, error) {
	r.mu.RLock()
	c, ok := r.compiled[s.Name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	// The compiler wants the decoded JSON form, not Go map types like []string.
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", s.Name, err)
	}
	c, err = compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}

	r.mu.Lock()
	r.compiled[s.Name] = c
	r.mu.Unlock()
	return c, nil
}
