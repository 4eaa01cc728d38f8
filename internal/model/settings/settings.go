package settings

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

var (
	Themes     = []string{"light", "dark", "system"}
	Languages  = []string{"en", "fr", "es"}
	Timezones  = []string{"America/Toronto", "America/Denver", "America/Los_Angeles"}
	Currencies = []string{"CAD", "USD", "EUR"}
)

// Profile holds the account holder's contact details.
type Profile struct {
	Name         string `json:"name" toml:"name"`
	Email        string `json:"email" toml:"email"`
	Phone        string `json:"phone" toml:"phone"`
	Organization string `json:"organization" toml:"organization"`
	Role         string `json:"role" toml:"role"`
}

// Notifications toggles the delivery channels and digests.
type Notifications struct {
	EmailNotifications bool `json:"emailNotifications" toml:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications" toml:"pushNotifications"`
	WeeklyDigest       bool `json:"weeklyDigest" toml:"weeklyDigest"`
	GrantDeadlines     bool `json:"grantDeadlines" toml:"grantDeadlines"`
	NewOpportunities   bool `json:"newOpportunities" toml:"newOpportunities"`
}

// Preferences holds display and locale choices.
type Preferences struct {
	Theme    string `json:"theme" toml:"theme"`
	Language string `json:"language" toml:"language"`
	Timezone string `json:"timezone" toml:"timezone"`
	Currency string `json:"currency" toml:"currency"`
}

// Settings is the full settings form state. Field order matches the export
// layout: profile, notifications, preferences.
type Settings struct {
	Profile       Profile       `json:"profile" toml:"profile"`
	Notifications Notifications `json:"notifications" toml:"notifications"`
	Preferences   Preferences   `json:"preferences" toml:"preferences"`
}

// Default returns the seeded settings shown on first load.
func Default() Settings {
	return Settings{
		Profile: Profile{
			Name:         "Sarah Johnson",
			Email:        "sarah.johnson@email.com",
			Phone:        "+1 (555) 123-4567",
			Organization: "TechStart Inc.",
			Role:         "Founder & CEO",
		},
		Notifications: Notifications{
			EmailNotifications: true,
			PushNotifications:  true,
			WeeklyDigest:       true,
			GrantDeadlines:     true,
			NewOpportunities:   false,
		},
		Preferences: Preferences{
			Theme:    "light",
			Language: "en",
			Timezone: "America/Toronto",
			Currency: "CAD",
		},
	}
}

// Validate checks the email shape and that every preference is one of the
// offered options.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Profile.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSettings)
	}
	if email := strings.TrimSpace(s.Profile.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return fmt.Errorf("%w: email %q is malformed", ErrInvalidSettings, s.Profile.Email)
		}
	}

	checks := []struct {
		field   string
		value   string
		options []string
	}{
		{"theme", s.Preferences.Theme, Themes},
		{"language", s.Preferences.Language, Languages},
		{"timezone", s.Preferences.Timezone, Timezones},
		{"currency", s.Preferences.Currency, Currencies},
	}
	for _, c := range checks {
		if !slices.Contains(c.options, c.value) {
			return fmt.Errorf("%w: %s must be one of %s", ErrInvalidSettings, c.field, strings.Join(c.options, ", "))
		}
	}
	return nil
}
