package domain

import "strings"

// ProviderKind selects which translation backend an adapter targets.
type ProviderKind string

const (
	// ProviderVision sends the rendered page image to a vision-capable
	// chat-completion endpoint.
	ProviderVision ProviderKind = "vision"

	// ProviderTextEndpoint sends extracted plain text to a
	// LibreTranslate-style translation endpoint.
	ProviderTextEndpoint ProviderKind = "text-endpoint"
)

// TranslationConfig holds the backend settings for one pipeline run.
// It is immutable once a run starts.
type TranslationConfig struct {
	Provider   ProviderKind `yaml:"provider" json:"provider"`
	BaseURL    string       `yaml:"base_url" json:"base_url"`
	APIKey     string       `yaml:"api_key" json:"-"`
	Model      string       `yaml:"model" json:"model"`
	TargetLang string       `yaml:"target_lang" json:"target_lang"`
}

// Normalize fills defaults for fields older stored configs may omit.
// A missing provider selects the vision backend.
func (c TranslationConfig) Normalize() TranslationConfig {
	if strings.TrimSpace(string(c.Provider)) == "" {
		c.Provider = ProviderVision
	}
	if strings.TrimSpace(c.TargetLang) == "" {
		c.TargetLang = "English"
	}
	return c
}

// Validate checks the configuration before a run.
func (c TranslationConfig) Validate() error {
	switch c.Provider {
	case ProviderVision:
		if strings.TrimSpace(c.APIKey) == "" {
			return ConfigError("api key is required for the vision provider", nil)
		}
		if strings.TrimSpace(c.BaseURL) == "" {
			return ConfigError("base URL is required for the vision provider", nil)
		}
	case ProviderTextEndpoint:
		// Base URL is optional; the adapter falls back to the local default.
	default:
		return ConfigError("unknown provider: "+string(c.Provider), nil)
	}
	return nil
}

// RequiresText reports whether the configured provider consumes extracted
// page text rather than the rendered image.
func (c TranslationConfig) RequiresText() bool {
	return c.Provider == ProviderTextEndpoint
}

// PageImage is a rendered page raster, encoded as a JPEG data URL.
type PageImage struct {
	DataURL string
	Width   int
	Height  int
}

// PageTask identifies one page of work for a provider adapter.
// The image is present for the vision provider; extracted text is present
// for the text-endpoint provider. Both may be set.
type PageTask struct {
	PageNumber   int // 1-based
	ImageDataURL string
	Text         string
}
