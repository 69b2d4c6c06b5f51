package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pagelingo/pagelingo/internal/domain"
)

// FileStore persists translation settings to a YAML file. A missing file
// is not an error; Load then returns normalized defaults so a first run
// works without any setup step.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns the per-user settings location.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "pagelingo", "settings.yaml")
}

// Load reads stored settings, normalizing fields older files may omit.
func (s *FileStore) Load() (domain.TranslationConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.TranslationConfig{}.Normalize(), nil
	}
	if err != nil {
		return domain.TranslationConfig{}, domain.IOError("read settings file", err)
	}

	var cfg domain.TranslationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.TranslationConfig{}, domain.ConfigError("parse settings file", err)
	}
	return cfg.Normalize(), nil
}

// Save writes settings, creating parent directories as needed.
func (s *FileStore) Save(cfg domain.TranslationConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return domain.ConfigError("encode settings", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.IOError(fmt.Sprintf("create settings dir %s", dir), err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return domain.IOError("write settings file", err)
	}
	return nil
}
