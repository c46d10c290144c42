// Package config loads and watches the codemate configuration.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. The config file, TOML or YAML by extension (DefaultPath)
//  3. CODEMATE_* environment variables (ApplyEnv)
//
// A Store holds the current configuration and reloads it when the file
// changes on disk. Readers call Get each time they need a value, so a
// request started after a reload sees the new API key and timeouts.
//
// Example file:
//
//	[api]
//	key = "sk-..."
//	provider = "deepseek"
//
//	[completion]
//	primary_timeout = "15s"
//	fallback_timeout = "30s"
//
//	[history]
//	max_undo = 10
package config
