package domain

import "fmt"

// Theme names accepted in settings.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings mirrors settings.json.
type Settings struct {
	SaveToHistory bool   `json:"saveToHistory"`
	AISuggestions bool   `json:"aiSuggestions"`
	Theme         string `json:"theme"`
}

// DefaultSettings returns the values used when settings.json is absent.
func DefaultSettings() Settings {
	return Settings{
		SaveToHistory: true,
		AISuggestions: true,
		Theme:         ThemeLight,
	}
}

// Validate checks enumerated fields.
func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeLight, ThemeDark:
		return nil
	default:
		return fmt.Errorf("theme must be %s|%s, got %q", ThemeLight, ThemeDark, s.Theme)
	}
}
