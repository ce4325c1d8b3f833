package helpers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/maildraft/internal/domain"
)

// SettingKeys lists the keys accepted by ApplySetting, in display order.
var SettingKeys = []string{"saveToHistory", "aiSuggestions", "theme"}

// ApplySetting returns settings with key set from its textual value.
func ApplySetting(settings domain.Settings, key, value string) (domain.Settings, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "saveToHistory":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return settings, fmt.Errorf("%s expects true|false, got %q", key, value)
		}
		settings.SaveToHistory = b
	case "aiSuggestions":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return settings, fmt.Errorf("%s expects true|false, got %q", key, value)
		}
		settings.AISuggestions = b
	case "theme":
		settings.Theme = strings.ToLower(value)
	default:
		return settings, fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(SettingKeys, ", "))
	}
	return settings, settings.Validate()
}
