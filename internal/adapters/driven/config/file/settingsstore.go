package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

// SettingsStore persists engine configuration as TOML.
// Settings are stored in a single file within the gumshoe config directory.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings domain.Settings
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.gumshoe/settings.toml.
// A missing file yields defaults; it is written on first Save.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".gumshoe")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "settings.toml"),
		settings: domain.DefaultSettings(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Get returns the current settings snapshot.
func (s *SettingsStore) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set replaces the settings and persists immediately.
func (s *SettingsStore) Set(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	return s.save()
}

// Update applies fn to a copy of the settings and persists the result.
func (s *SettingsStore) Update(fn func(*domain.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.settings
	fn(&updated)
	s.settings = updated
	return s.save()
}

// save writes settings to the TOML file (caller must hold lock).
func (s *SettingsStore) save() error {
	data, err := toml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restricted permissions: the file may hold API keys.
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads settings from the TOML file. Fields absent from the file
// keep their default values.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.settings = domain.DefaultSettings()
			return nil
		}
		return err
	}

	loaded := domain.DefaultSettings()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.settings = loaded
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
