package style

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// VoiceStyle configures narration synthesis for a preset.
// Voices maps ISO 639-1 codes to per-language voice IDs; VoiceID is the
// voice used when the table has no entry for the detected language.
type VoiceStyle struct {
	VoiceID      string             `yaml:"voice_id"`
	Speed        float64            `yaml:"speed"`
	Voices       map[string]string  `yaml:"voices,omitempty"`
	PauseMarkers map[string]float64 `yaml:"pause_markers,omitempty"`
}

// VideoStyle configures rendering and composition for a preset.
type VideoStyle struct {
	Quality         string `yaml:"quality"`
	BackgroundColor string `yaml:"background_color"`
	FontColor       string `yaml:"font_color"`
}

// Config is one named style preset. Presets are plain data passed into
// components at construction; nothing here is process-global.
type Config struct {
	Name  string     `yaml:"name"`
	Voice VoiceStyle `yaml:"voice"`
	Video VideoStyle `yaml:"video"`
}

// Default returns the built-in preset.
func Default() *Config {
	return &Config{
		Name: "default",
		Voice: VoiceStyle{
			VoiceID: "alloy",
			Speed:   1.0,
		},
		Video: VideoStyle{
			Quality:         "medium",
			BackgroundColor: "#0e1117",
			FontColor:       "#ffffff",
		},
	}
}

// LoadPreset reads <dir>/<name>.yaml. The name "default" (or an empty
// name) returns the built-in preset without touching disk; unset fields
// of a loaded preset inherit the default's values.
func LoadPreset(dir, name string) (*Config, error) {
	if name == "" || name == "default" {
		return Default(), nil
	}

	path := filepath.Join(dir, name+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style preset %q: %w", name, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse style preset %q: %w", name, err)
	}
	cfg.Name = name

	if cfg.Voice.Speed <= 0 {
		return nil, fmt.Errorf("style preset %q has non-positive voice speed", name)
	}

	return cfg, nil
}
