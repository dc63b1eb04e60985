// Package prefs remembers the interactive form's last values between runs.
// Preferences are stored in ~/.config/apiwatchdog/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/apiwatchdog/internal/config"
)

// Prefs holds the values the form restores on startup.
type Prefs struct {
	Theme    string `toml:"theme"`
	Provider string `toml:"provider"`
	Interval int    `toml:"interval"`
	Query    string `toml:"query"`
	LogFile  string `toml:"log_file"`
}

const (
	defaultPrefsPath = "~/.config/apiwatchdog/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultProvider  = "weather"
	defaultInterval  = 5
	// DefaultLogFile is the form's log file when nothing was remembered.
	DefaultLogFile = "logs/api_watchdog.log"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the preferences used on first launch.
func Default() Prefs {
	return Prefs{
		Theme:    defaultTheme,
		Provider: defaultProvider,
		Interval: defaultInterval,
		LogFile:  DefaultLogFile,
	}
}

// Load reads preferences from path. Missing or unreadable files yield the
// defaults; preferences are never worth failing startup over.
func Load(path string) Prefs {
	prefs := Default()

	bytes, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default()
	}
	prefs.fill()
	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved := resolvePath(path)

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func (p *Prefs) fill() {
	def := Default()
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = def.Theme
	}
	if strings.TrimSpace(p.Provider) == "" {
		p.Provider = def.Provider
	}
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	if strings.TrimSpace(p.LogFile) == "" {
		p.LogFile = def.LogFile
	}
}

func resolvePath(path string) string {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
