package llm

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"none is valid", Config{Provider: ProviderNone}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearVendorKeys(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "AISCHOOL_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearVendorKeys(t)
	if _, ok := ConfigFromEnv(); ok {
		t.Fatal("ConfigFromEnv reported ok without AISCHOOL_LLM_PROVIDER")
	}

	t.Setenv("AISCHOOL_LLM_PROVIDER", "openai")
	t.Setenv("AISCHOOL_LLM_OPENAI_API_KEY", "sk-1")
	t.Setenv("AISCHOOL_LLM_OPENAI_MODEL", "gpt-4o")
	t.Setenv("AISCHOOL_LLM_TIMEOUT", "5s")
	cfg, ok := ConfigFromEnv()
	if !ok {
		t.Fatal("ConfigFromEnv not ok")
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-1" || cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
}

func TestResolveConfig(t *testing.T) {
	clearVendorKeys(t)
	if cfg := ResolveConfig(); cfg.Enabled() {
		t.Fatalf("ResolveConfig() = %q, want disabled", cfg.Provider)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg := ResolveConfig()
	if cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Errorf("discovered cfg = %+v", cfg)
	}

	t.Setenv("AISCHOOL_LLM_PROVIDER", "mock")
	if cfg := ResolveConfig(); cfg.Provider != ProviderMock {
		t.Errorf("explicit provider lost: %q", cfg.Provider)
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), DefaultConfig(), nil, nil, nil)
	if err != nil || p != nil {
		t.Fatalf("NewProvider(none) = %v, %v; want nil, nil", p, err)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: ProviderGemini}, nil, nil, nil); err == nil {
		t.Fatal("expected error for gemini without key")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(mock): %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", p.ModelID())
	}
}

func TestEstimateCost(t *testing.T) {
	usd, ok := EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	if !ok || math.Abs(usd-0.75) > 1e-9 {
		t.Errorf("EstimateCost = %v, %v; want 0.75, true", usd, ok)
	}
	if _, ok := EstimateCost("nope", 1, 1); ok {
		t.Error("unknown model reported a price")
	}
}
