package config

import "time"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Responder answers question batches for the whole agent pool
	Responder string `json:"responder" env:"GEMINI_MODEL_RESPONDER" envDefault:"gemini-2.0-flash"`

	// Transformer rewrites latent factors under a scenario (quality over speed)
	Transformer string `json:"transformer" env:"GEMINI_MODEL_TRANSFORMER" envDefault:"gemini-2.0-flash"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey  string        `json:"-" env:"GEMINI_API_KEY"` // Never serialize
	BaseURL string        `json:"baseUrl" env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models"`
	Models  GeminiModels  `json:"models"`
	Timeout time.Duration `json:"timeout" env:"GEMINI_TIMEOUT" envDefault:"60s"`
}

// DefaultAIConfig returns the AI configuration from the environment
func DefaultAIConfig() (*AIConfig, error) {
	var cfg AIConfig
	if err := parseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
