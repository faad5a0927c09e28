package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/zerowire/variant"
)

// Config controls how values are rendered.
type Config struct {
	HexWidth  int  // bytes per hex dump row
	MaxDepth  int  // deepest container level expanded
	Preview   int  // string characters shown before truncating
	Color     bool // styled output when stdout is a terminal
	MaxValues int  // top-level values shown, 0 for all
}

func defaultConfig() Config {
	return Config{
		HexWidth: 16,
		MaxDepth: variant.MaxDepth,
		Preview:  48,
		Color:    true,
	}
}

// zwinspect config.toml key mapping.
type fileConfig struct {
	HexWidth  int  `toml:"hex_width"`
	MaxDepth  int  `toml:"max_depth"`
	Preview   int  `toml:"preview"`
	Color     bool `toml:"color"`
	MaxValues int  `toml:"max_values"`
}

// loadConfig overlays the keys defined in path onto the defaults. An empty
// path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("hex_width") {
		cfg.HexWidth = raw.HexWidth
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("preview") {
		cfg.Preview = raw.Preview
	}
	if meta.IsDefined("color") {
		cfg.Color = raw.Color
	}
	if meta.IsDefined("max_values") {
		cfg.MaxValues = raw.MaxValues
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HexWidth < 1 || c.HexWidth > 64 {
		return fmt.Errorf("hex_width %d out of range [1, 64]", c.HexWidth)
	}
	if c.MaxDepth < 0 || c.MaxDepth > variant.MaxDepth {
		return fmt.Errorf("max_depth %d out of range [0, %d]", c.MaxDepth, variant.MaxDepth)
	}
	if c.Preview < 0 {
		return fmt.Errorf("preview %d is negative", c.Preview)
	}
	if c.MaxValues < 0 {
		return fmt.Errorf("max_values %d is negative", c.MaxValues)
	}
	return nil
}
