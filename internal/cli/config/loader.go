package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey stores the logger in a command context.
type loggerKey struct{}

var (
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile picks the config file to use.
// Priority: explicit path > leapcomplete.yaml > leapcomplete.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"leapcomplete.yaml", "leapcomplete.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration. Precedence, highest to lowest:
// flags > env vars (LEAPCOMPLETE_ prefix) > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"max_suggestions": DefaultMaxSuggestions,
		"log_level":       DefaultLogLevel,
		"output":          DefaultOutput,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFileUsed, err)
		}
	}

	// LEAPCOMPLETE_CATALOG_TYPE -> catalog.type
	if err := k.Load(env.Provider("LEAPCOMPLETE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "LEAPCOMPLETE_"))
		if rest, ok := strings.CutPrefix(key, "catalog_"); ok {
			return "catalog." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The --schema flag is shorthand for a yaml file catalog.
			if key == "schema" {
				return "catalog.path", posflag.FlagVal(flags, f)
			}
			if key == "catalog" {
				return "catalog.type", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// A schema path without an explicit type means a yaml catalog.
	if cfg.Catalog.Type == "" && cfg.Catalog.Path != "" &&
		(strings.HasSuffix(cfg.Catalog.Path, ".yaml") || strings.HasSuffix(cfg.Catalog.Path, ".yml")) {
		cfg.Catalog.Type = "yaml"
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the config file path in use, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration loaded by the last Load call.
func GetCurrentConfig() *Config {
	return currentConfig
}

// NewLogger builds the process logger for the configured level. Logs go to
// stderr so stdout stays clean for command output and LSP framing.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores the logger in a context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from a command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
