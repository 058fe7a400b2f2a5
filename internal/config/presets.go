package config

import "sort"

// Presets are ready-made configurations keyed by name.
var Presets = map[string]func() *Config{
	"golden": func() *Config {
		return DefaultConfig()
	},
	"about": func() *Config {
		cfg := DefaultConfig()
		cfg.Preset = "about"
		cfg.Physics.BaseRadius = 10
		cfg.Physics.RadiusScale = 4
		cfg.Render.RadiusPerMass = 1
		return cfg
	},
	"binary": func() *Config {
		cfg := DefaultConfig()
		cfg.Preset = "binary"
		cfg.Count = 2
		return cfg
	},
}

// PresetDescriptions are shown by the CLI and the TUI menu.
var PresetDescriptions = map[string]string{
	"golden": "five nodes on a golden-ratio spread, masses 1..phi^4",
	"about":  "fixed layout with two heavy anchors",
	"binary": "a resting 1:4 pair, 50px apart",
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
