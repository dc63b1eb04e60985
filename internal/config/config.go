package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/apiwatchdog/internal/fetch"
	"github.com/five82/apiwatchdog/internal/logging"
	"github.com/five82/apiwatchdog/internal/provider"
)

// ErrInvalid wraps every rejected configuration value.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the optional settings file. Every field has a default.
type Config struct {
	Fetch   Fetch    `toml:"fetch" yaml:"fetch"`
	Log     Log      `toml:"log" yaml:"log"`
	Weather Upstream `toml:"weather" yaml:"weather"`
	Stock   Upstream `toml:"stock" yaml:"stock"`
	Metrics Metrics  `toml:"metrics" yaml:"metrics"`
}

// Fetch tunes the retrying fetcher.
type Fetch struct {
	MaxRetries     int     `toml:"max_retries" yaml:"max_retries" validate:"gte=1,lte=100"`
	DelaySeconds   float64 `toml:"delay_seconds" yaml:"delay_seconds" validate:"gt=0"`
	TimeoutSeconds float64 `toml:"timeout_seconds" yaml:"timeout_seconds" validate:"gt=0"`
}

// Log tunes the data log sink.
type Log struct {
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" validate:"gte=0"`
	Compress   bool   `toml:"compress" yaml:"compress"`
	Mirror     bool   `toml:"mirror" yaml:"mirror"`
	Level      string `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// Upstream overrides a provider's base URL.
type Upstream struct {
	BaseURL string `toml:"base_url" yaml:"base_url" validate:"omitempty,url"`
}

// Metrics configures the Prometheus listener. An empty Addr disables it.
type Metrics struct {
	Addr string `toml:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
}

const (
	DefaultPath    = "~/.config/apiwatchdog/config.toml"
	defaultLevel   = "info"
	defaultMaxSize = 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Fetch: Fetch{
			MaxRetries:     fetch.DefaultMaxRetries,
			DelaySeconds:   fetch.DefaultDelay.Seconds(),
			TimeoutSeconds: fetch.DefaultTimeout.Seconds(),
		},
		Log: Log{
			MaxSizeMB: defaultMaxSize,
			Level:     defaultLevel,
		},
		Weather: Upstream{BaseURL: provider.DefaultWeatherBaseURL},
		Stock:   Upstream{BaseURL: provider.DefaultStockBaseURL},
	}
}

// Load reads the settings file at path, or DefaultPath when path is empty.
// A missing file yields the defaults. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &cfg)
	default:
		err = toml.Unmarshal(bytes, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting in one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %v fails %s", settingName(fe.Namespace()), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLevel
	}
	c.Weather.BaseURL = strings.TrimSpace(c.Weather.BaseURL)
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = provider.DefaultWeatherBaseURL
	}
	c.Stock.BaseURL = strings.TrimSpace(c.Stock.BaseURL)
	if c.Stock.BaseURL == "" {
		c.Stock.BaseURL = provider.DefaultStockBaseURL
	}
	c.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
}

// settingName turns "Config.Fetch.MaxRetries" into "fetch.MaxRetries".
func settingName(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	if i := strings.IndexByte(ns, '.'); i > 0 {
		return strings.ToLower(ns[:i]) + ns[i:]
	}
	return ns
}

// LoadEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FetchOptions converts the fetch section for fetch.New.
func (c Config) FetchOptions() fetch.Options {
	return fetch.Options{
		MaxRetries: c.Fetch.MaxRetries,
		Delay:      seconds(c.Fetch.DelaySeconds),
		Timeout:    seconds(c.Fetch.TimeoutSeconds),
	}
}

// LogOptions converts the log section for a data sink at path.
func (c Config) LogOptions(path string) logging.Options {
	return logging.Options{
		Path:       ExpandPath(path),
		Mirror:     c.Log.Mirror,
		Level:      logging.ParseLevel(c.Log.Level),
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		Compress:   c.Log.Compress,
	}
}

// Endpoint fills in the base URL and API key for ep from the settings and
// environment. The result still needs provider validation.
func (c Config) Endpoint(ep provider.Endpoint) provider.Endpoint {
	switch ep.Kind {
	case provider.KindWeather:
		ep.BaseURL = c.Weather.BaseURL
	case provider.KindStock:
		ep.BaseURL = c.Stock.BaseURL
	}
	if ep.APIKey == "" {
		ep.APIKey = os.Getenv(ep.Kind.APIKeyEnv())
	}
	return ep
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath)
	}
	return expandPath(path)
}

// ExpandPath resolves ~ and relative paths, returning path unchanged when it
// cannot be resolved.
func ExpandPath(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
