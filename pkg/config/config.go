package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultFile is read from the working directory when present
	DefaultFile = "appearance-engine.toml"
	envPrefix   = "APPEARANCE_ENGINE_"
)

// Config holds all configuration for the engine
type Config struct {
	Dataset    string        `koanf:"dataset"`    // Dataset document to load
	Appearance string        `koanf:"appearance"` // Appearance document, optional
	WebMode    bool          `koanf:"web"`
	Port       int           `koanf:"port"`
	Watch      bool          `koanf:"watch"`
	Debounce   time.Duration `koanf:"debounce"` // Quiet period before reloading changed documents
	Replay     int           `koanf:"replay"`   // Rendering events kept for late SSE subscribers
	Verbosity  string        `koanf:"verbosity"`
	VerboseCnt int           `koanf:"verbose"`
	JSONLogs   bool          `koanf:"json"`
}

// Defaults returns the lowest-priority configuration layer
func Defaults() map[string]any {
	return map[string]any{
		"dataset":    "",
		"appearance": "",
		"web":        false,
		"port":       8080,
		"watch":      false,
		"debounce":   "300ms",
		"replay":     1,
		"verbosity":  "",
		"verbose":    0,
		"json":       false,
	}
}

// RegisterFlags adds the command line flags Load understands
func RegisterFlags(f *pflag.FlagSet) {
	f.StringP("dataset", "d", "", "Dataset document (JSON)")
	f.StringP("appearance", "a", "", "Appearance document (JSON)")
	f.Bool("web", false, "Serve the HTTP API instead of printing the caption")
	f.IntP("port", "p", 8080, "Port for the HTTP API (only used with --web)")
	f.BoolP("watch", "w", false, "Reload documents when they change")
	f.Duration("debounce", 300*time.Millisecond, "Quiet period before reloading changed documents")
	f.Int("replay", 1, "Rendering events replayed to new subscribers")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	f.Bool("json", false, "Write logs as JSON")
	f.String("config", DefaultFile, "Configuration file (TOML)")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The file is optional unless named explicitly
	path, explicit := DefaultFile, false
	if f != nil {
		if flag := f.Lookup("config"); flag != nil {
			path, explicit = flag.Value.String(), flag.Changed
		}
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil && explicit {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	// e.g. APPEARANCE_ENGINE_PORT=9090
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	var errs []error
	if c.Dataset == "" {
		errs = append(errs, errors.New("no dataset given"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("negative debounce %s", c.Debounce))
	}
	if c.Replay < 0 {
		errs = append(errs, fmt.Errorf("negative replay %d", c.Replay))
	}
	if _, err := parseLevel(c.Verbosity); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel resolves the log level. An explicit verbosity wins; otherwise each
// -v lowers the level one step below info.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		level, _ := parseLevel(c.Verbosity)
		return level
	}
	switch {
	case c.VerboseCnt >= 2:
		return slog.LevelDebug - 4
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return slog.LevelDebug - 4, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown verbosity %q", s)
	}
}

// mapProvider serves a static map as a koanf provider
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) {
	return p, nil
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
