package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelingo/pagelingo/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, domain.ProviderVision, cfg.Translation.Provider)
	assert.Equal(t, 768, cfg.Render.MaxDimension)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
cache:
  driver: redis
  ttl: 1h
translation:
  provider: text-endpoint
  base_url: http://localhost:5000/translate
  target_lang: German
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, domain.ProviderTextEndpoint, cfg.Translation.Provider)
	assert.Equal(t, "German", cfg.Translation.TargetLang)
	// File omissions keep defaults.
	assert.Equal(t, 60, cfg.Render.JPEGQuality)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("TRANSLATION_TARGET_LANG", "Japanese")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "Japanese", cfg.Translation.TargetLang)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"bad jpeg quality", func(c *Config) { c.Render.JPEGQuality = 101 }},
		{"bad max attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)

	saved := domain.TranslationConfig{
		Provider:   domain.ProviderVision,
		BaseURL:    "https://openrouter.ai/api/v1",
		APIKey:     "sk-test",
		Model:      "google/gemini-2.0-flash-001",
		TargetLang: "French",
	}
	require.NoError(t, store.Save(saved))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestFileStoreLoadMissingReturnsDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.yaml"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderVision, got.Provider)
	assert.Equal(t, "English", got.TargetLang)
}

func TestFileStoreLoadNormalizesOldFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	// Older files predate the provider and target_lang fields.
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://openrouter.ai/api\nmodel: m\n"), 0o600))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderVision, got.Provider)
	assert.Equal(t, "English", got.TargetLang)
	assert.Equal(t, "https://openrouter.ai/api", got.BaseURL)
}
