// Package config loads CLI and LSP configuration from file, environment,
// and flags.
package config

import (
	"github.com/leapstack-labs/leapcomplete/internal/catalog"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// Config holds all settings for the completion tooling.
type Config struct {
	// Catalog selects and configures the schema source.
	Catalog catalog.Config `koanf:"catalog"`

	// MaxSuggestions caps completion responses. Zero means unlimited.
	MaxSuggestions int `koanf:"max_suggestions"`

	// RankWeights tunes suggestion scoring.
	RankWeights complete.RankWeights `koanf:"rank_weights"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Output selects the rendering format (table, json, csv).
	Output string `koanf:"output"`

	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultMaxSuggestions = 50
	DefaultLogLevel       = "info"
	DefaultOutput         = "table"
)
