package config

import (
	"os"
	"path/filepath"
)

// AppName names the config directory and log file.
const AppName = "codemate"

// File names searched in the config directory, in order.
var configFileNames = []string{"config.toml", "config.yaml", "config.yml"}

// Dir returns the configuration directory:
// $CODEMATE_CONFIG_DIR, then $XDG_CONFIG_HOME/codemate, then
// ~/.config/codemate.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the first existing config file in Dir, or
// Dir/config.toml when none exists.
func DefaultPath() string {
	dir := Dir()
	for _, name := range configFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, configFileNames[0])
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(Dir(), AppName+".log")
}

// HookScriptPath returns the hook script path, resolved against Dir when
// relative. Empty when no script is configured.
func (c *Config) HookScriptPath() string {
	if c.Hooks.Script == "" {
		return ""
	}
	if filepath.IsAbs(c.Hooks.Script) {
		return c.Hooks.Script
	}
	return filepath.Join(Dir(), c.Hooks.Script)
}
