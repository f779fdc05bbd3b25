package dataset

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/starfall/internal/world"
)

// DefaultSettings returns the settings a generation runs with when the
// player file leaves a field unset.
func DefaultSettings() world.Settings {
	return world.Settings{
		StarShuffle: true,
		GoalStars:   7,
	}
}

// LoadSettings reads a player settings YAML file.
func LoadSettings(path string) (world.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return world.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return world.Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// ParseSettings decodes player settings YAML. Unknown fields are
// rejected so a typoed option name fails loudly instead of silently
// running with defaults.
func ParseSettings(data []byte) (world.Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return world.Settings{}, fmt.Errorf("parse settings yaml: %w", err)
	}
	return s, nil
}
