// Package llm provides LLM configuration and the client used for profile
// enhancement and template editing.
package llm

import (
	"strconv"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction
	TierLite ModelTier = "lite"
	// TierStandard is for structured output such as section rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long generations such as whole-template edits
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

const (
	// DefaultTemperature is used when no temperature is configured.
	DefaultTemperature float32 = 0.4
	// DefaultMaxRetries bounds retries of quota and availability errors.
	DefaultMaxRetries = 2
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	MaxRetries  int
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
		MaxRetries:  DefaultMaxRetries,
	}
}

// ConfigFromEnv starts from the defaults and applies AI_MODEL (standard
// tier), AI_MODEL_LITE, AI_MODEL_ADVANCED, AI_TEMPERATURE and
// AI_MAX_RETRIES. Unparseable values are ignored.
func ConfigFromEnv(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	if m := strings.TrimSpace(getenv("AI_MODEL")); m != "" {
		cfg = cfg.WithModel(TierStandard, m)
	}
	if m := strings.TrimSpace(getenv("AI_MODEL_LITE")); m != "" {
		cfg = cfg.WithModel(TierLite, m)
	}
	if m := strings.TrimSpace(getenv("AI_MODEL_ADVANCED")); m != "" {
		cfg = cfg.WithModel(TierAdvanced, m)
	}
	if v := strings.TrimSpace(getenv("AI_TEMPERATURE")); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 && f <= 2 {
			cfg.Temperature = float32(f)
		}
	}
	if v := strings.TrimSpace(getenv("AI_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
		MaxRetries:  c.MaxRetries,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
