package config

import "os"

// Environment variables read by codemate.
const (
	EnvConfigDir = "CODEMATE_CONFIG_DIR"
	EnvAPIKey    = "CODEMATE_API_KEY"
	EnvBaseURL   = "CODEMATE_BASE_URL"
	EnvProvider  = "CODEMATE_PROVIDER"
	EnvLogLevel  = "CODEMATE_LOG_LEVEL"
)

// envMapping maps environment variables to the settings they override.
var envMapping = []struct {
	env string
	key string
	set func(c *Config, v string)
}{
	{EnvAPIKey, "api.key", func(c *Config, v string) { c.API.Key = v }},
	{EnvBaseURL, "api.base_url", func(c *Config, v string) { c.API.BaseURL = v }},
	{EnvProvider, "api.provider", func(c *Config, v string) { c.API.Provider = v }},
	{EnvLogLevel, "log.level", func(c *Config, v string) { c.Log.Level = v }},
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from the environment. Empty values are
// ignored. It returns the keys that were overridden.
func (c *Config) ApplyEnv(lookup LookupFunc) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var keys []string
	for _, m := range envMapping {
		if v, ok := lookup(m.env); ok && v != "" {
			m.set(c, v)
			keys = append(keys, m.key)
		}
	}
	return keys
}
