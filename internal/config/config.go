package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/codemate/internal/completion"
)

// Duration is a time.Duration that reads and writes as "15s" style text.
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete codemate configuration.
type Config struct {
	API        APIConfig        `toml:"api" yaml:"api"`
	Completion CompletionConfig `toml:"completion" yaml:"completion"`
	History    HistoryConfig    `toml:"history" yaml:"history"`
	Preview    PreviewConfig    `toml:"preview" yaml:"preview"`
	Log        LogConfig        `toml:"log" yaml:"log"`
	Hooks      HooksConfig      `toml:"hooks" yaml:"hooks"`
}

// APIConfig selects the completion service.
type APIConfig struct {
	Key      string `toml:"key" yaml:"key"`
	BaseURL  string `toml:"base_url" yaml:"base_url"`
	Provider string `toml:"provider" yaml:"provider"`
}

// CompletionConfig controls completion requests.
type CompletionConfig struct {
	PrimaryModel    string   `toml:"primary_model" yaml:"primary_model"`
	FallbackModel   string   `toml:"fallback_model" yaml:"fallback_model"`
	PrimaryTimeout  Duration `toml:"primary_timeout" yaml:"primary_timeout"`
	FallbackTimeout Duration `toml:"fallback_timeout" yaml:"fallback_timeout"`
	Temperature     float64  `toml:"temperature" yaml:"temperature"`
	MaxTokens       int      `toml:"max_tokens" yaml:"max_tokens"`
	MaxChainLength  int      `toml:"max_chain_length" yaml:"max_chain_length"`
	// ContextLines is how many lines before the cursor line are sent.
	ContextLines int `toml:"context_lines" yaml:"context_lines"`
	// CacheTTL enables reply caching when positive.
	CacheTTL Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// HistoryConfig controls the update record store.
type HistoryConfig struct {
	MaxUndo         int  `toml:"max_undo" yaml:"max_undo"`
	AnchorRanges    bool `toml:"anchor_ranges" yaml:"anchor_ranges"`
	DuplicateOnRedo bool `toml:"duplicate_on_redo" yaml:"duplicate_on_redo"`
}

// PreviewConfig controls how staged and revealed text is drawn.
type PreviewConfig struct {
	Color             string   `toml:"color" yaml:"color"`
	HighlightColor    string   `toml:"highlight_color" yaml:"highlight_color"`
	HighlightDuration Duration `toml:"highlight_duration" yaml:"highlight_duration"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
}

// HooksConfig points at the user hook script.
type HooksConfig struct {
	Script string `toml:"script" yaml:"script"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Provider: completion.ProviderDeepSeek,
		},
		Completion: CompletionConfig{
			PrimaryModel:    completion.DefaultPrimaryModel,
			FallbackModel:   completion.DefaultFallbackModel,
			PrimaryTimeout:  Duration(completion.DefaultPrimaryTimeout),
			FallbackTimeout: Duration(completion.DefaultFallbackTimeout),
			Temperature:     completion.DefaultTemperature,
			MaxChainLength:  completion.DefaultMaxChainLength,
			ContextLines:    5,
		},
		History: HistoryConfig{
			MaxUndo:         10,
			AnchorRanges:    true,
			DuplicateOnRedo: true,
		},
		Preview: PreviewConfig{
			Color:             "#808080",
			HighlightColor:    "#5f5f00",
			HighlightDuration: Duration(5 * time.Second),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	switch strings.ToLower(c.API.Provider) {
	case completion.ProviderDeepSeek, completion.ProviderOpenAI,
		completion.ProviderAnthropic, completion.ProviderGemini:
	default:
		return invalid("api.provider", c.API.Provider, "unknown provider")
	}
	if c.Completion.PrimaryModel == "" {
		return invalid("completion.primary_model", c.Completion.PrimaryModel, "must not be empty")
	}
	if c.Completion.FallbackModel == "" {
		return invalid("completion.fallback_model", c.Completion.FallbackModel, "must not be empty")
	}
	if c.Completion.PrimaryTimeout <= 0 {
		return invalid("completion.primary_timeout", c.Completion.PrimaryTimeout.Std(), "must be positive")
	}
	if c.Completion.FallbackTimeout <= 0 {
		return invalid("completion.fallback_timeout", c.Completion.FallbackTimeout.Std(), "must be positive")
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return invalid("completion.temperature", c.Completion.Temperature, "must be between 0 and 2")
	}
	if c.Completion.MaxTokens < 0 {
		return invalid("completion.max_tokens", c.Completion.MaxTokens, "must not be negative")
	}
	if c.Completion.ContextLines < 0 {
		return invalid("completion.context_lines", c.Completion.ContextLines, "must not be negative")
	}
	if c.History.MaxUndo < 1 {
		return invalid("history.max_undo", c.History.MaxUndo, "must be at least 1")
	}
	if _, err := ParseColor(c.Preview.Color); err != nil {
		return invalid("preview.color", c.Preview.Color, err.Error())
	}
	if _, err := ParseColor(c.Preview.HighlightColor); err != nil {
		return invalid("preview.highlight_color", c.Preview.HighlightColor, err.Error())
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, err.Error())
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := c.Clone()
	if cp.API.Key != "" {
		cp.API.Key = "********"
	}
	return cp
}

// ProviderConfig returns the provider settings.
func (c *Config) ProviderConfig() completion.ProviderConfig {
	return completion.ProviderConfig{
		Name:    c.API.Provider,
		BaseURL: c.API.BaseURL,
	}
}

// RequestSettings returns the requester settings.
func (c *Config) RequestSettings() completion.Settings {
	return completion.Settings{
		PrimaryModel:    c.Completion.PrimaryModel,
		FallbackModel:   c.Completion.FallbackModel,
		PrimaryTimeout:  c.Completion.PrimaryTimeout.Std(),
		FallbackTimeout: c.Completion.FallbackTimeout.Std(),
		Temperature:     c.Completion.Temperature,
		MaxTokens:       c.Completion.MaxTokens,
		MaxChainLength:  c.Completion.MaxChainLength,
	}
}

// ParseColor parses a "#rrggbb" or "#rgb" color.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}
