package hints

// Config holds generation settings.
type Config struct {
	HintMaxTokens        int
	ExplanationMaxTokens int
	Temperature          float64
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		HintMaxTokens:        256,
		ExplanationMaxTokens: 768,
		Temperature:          0.4,
	}
}
