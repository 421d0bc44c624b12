package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"tomantrack/models"
)

// SettingsStore owns the settings.json file. Reads fall back to defaults
// when the file is missing or unreadable, so the server always has a
// working configuration.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore creates a settings store backed by the given file path
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Get returns the current settings
func (s *SettingsStore) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies a partial update and persists the result
func (s *SettingsStore) Update(req models.UpdateSettingsRequest) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := req.Apply(s.load())
	if err != nil {
		return settings, err
	}

	if err := s.save(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *SettingsStore) load() models.Settings {
	settings := models.DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading %s: %v", s.path, err)
		}
		return settings
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("Error parsing %s, using defaults: %v", s.path, err)
		return models.DefaultSettings()
	}
	return settings
}

func (s *SettingsStore) save(settings models.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", s.path, err)
	}
	return nil
}
