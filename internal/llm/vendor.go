package llm

import (
	"encoding/json"
	"errors"
)

// Normalized Response.StopReason values.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// defaultMaxTokens applies when a Request leaves MaxTokens unset. Hints and
// explanations are short; Anthropic rejects a zero limit.
const defaultMaxTokens = 512

// modelAliases maps short names accepted in config to vendor model IDs,
// per provider. Unknown names pass through unchanged.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-sonnet": "claude-sonnet-4-20250514",
		"claude-haiku":  "claude-haiku-4-5-20251001",
	},
	ProviderOpenAI: {
		"gpt-4o":      "gpt-4o",
		"gpt-4o-mini": "gpt-4o-mini",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.0-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// completion is what every vendor adapter extracts from its SDK response
// before the shared checks in finish run.
type completion struct {
	text  string
	usage Usage
	model string
	stop  string
}

func prepare(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	return req
}

// finish validates c against req and builds the Response.
func finish(req Request, c completion) (*Response, error) {
	content := json.RawMessage(c.text)
	if len(content) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("empty completion")}
	}
	if req.Schema != nil {
		if c.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := ValidateJSON(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if c.usage.TotalTokens == 0 {
		c.usage.TotalTokens = c.usage.InputTokens + c.usage.OutputTokens
	}
	if c.stop == "" {
		c.stop = StopEnd
	}
	return &Response{Content: content, Usage: c.usage, Model: c.model, StopReason: c.stop}, nil
}
