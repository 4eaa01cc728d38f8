package settings

import (
	"context"
	"fmt"
	"log"
	"sync"

	model "github.com/heva-hub/assistant/backend/internal/model/settings"
)

// Service holds the single in-memory settings document.
type Service struct {
	mu      sync.RWMutex
	current model.Settings
}

// NewService seeds the service with the provided settings.
func NewService(initial model.Settings) *Service {
	return &Service{current: initial}
}

// Get returns the current settings.
func (s *Service) Get(_ context.Context) model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and replaces the settings. Invalid input leaves the
// stored document untouched.
func (s *Service) Update(_ context.Context, next model.Settings) (model.Settings, error) {
	if err := next.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("update settings: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	log.Printf("[settings] saved profile=%q theme=%s language=%s", next.Profile.Name, next.Preferences.Theme, next.Preferences.Language)
	return next, nil
}

// Reset restores the seeded defaults.
func (s *Service) Reset(_ context.Context) model.Settings {
	defaults := model.Default()
	s.mu.Lock()
	s.current = defaults
	s.mu.Unlock()
	return defaults
}
