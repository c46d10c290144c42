package config

import (
	"fmt"

	"github.com/dshills/codemate/internal/config/loader"
)

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return load(loader.New(), path, nil)
}

func load(l *loader.Loader, path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := l.LoadInto(path, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(lookup)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Encode renders cfg in the format implied by path's extension.
func Encode(cfg *Config, path string) ([]byte, error) {
	format, err := loader.FormatOf(path)
	if err != nil {
		format = loader.FormatTOML
	}
	enc, err := loader.EncoderFor(format)
	if err != nil {
		return nil, err
	}
	return enc.Encode(cfg)
}
