package settings

import (
	"errors"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

func TestValidateRejectsUnknownOptions(t *testing.T) {
	cases := map[string]func(*Settings){
		"theme":    func(s *Settings) { s.Preferences.Theme = "neon" },
		"language": func(s *Settings) { s.Preferences.Language = "de" },
		"timezone": func(s *Settings) { s.Preferences.Timezone = "Europe/Paris" },
		"currency": func(s *Settings) { s.Preferences.Currency = "GBP" },
		"email":    func(s *Settings) { s.Profile.Email = "not-an-email" },
		"name":     func(s *Settings) { s.Profile.Name = "   " },
	}

	for name, mutate := range cases {
		s := Default()
		mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("%s: expected ErrInvalidSettings, got %v", name, err)
		}
	}
}

func TestValidateAllowsEmptyEmail(t *testing.T) {
	s := Default()
	s.Profile.Email = ""
	if err := s.Validate(); err != nil {
		t.Fatalf("expected empty email to be accepted, got %v", err)
	}
}
