// Package catalog loads schema snapshots for the completion engine. A
// provider introspects one source (a database catalog or a schema file) and
// produces the read-only snapshot the engine completes against; callers
// refresh snapshots on their own schedule.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// Config holds the connection settings for a provider.
type Config struct {
	// Type selects the provider (e.g. "duckdb", "postgres", "yaml").
	Type string `koanf:"type"`

	// Path is the file path for file-based sources (a DuckDB database or a
	// YAML schema file). Use ":memory:" for an in-memory DuckDB.
	Path string `koanf:"path"`

	// Host/Port/Database/Username/Password apply to network databases.
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Options carries driver-specific settings (e.g. sslmode).
	Options map[string]string `koanf:"options"`
}

// Provider loads a schema snapshot from one source.
type Provider interface {
	// Connect establishes the underlying connection.
	Connect(ctx context.Context, cfg Config) error

	// Load introspects the source and returns a fresh snapshot.
	Load(ctx context.Context) (*complete.Schema, error)

	// Close releases the connection.
	Close() error

	// Name returns the provider type name.
	Name() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Provider)
)

// Register adds a provider factory to the registry. Called by provider
// implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates a provider for the config's type. A nil logger discards.
func New(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("catalog type not specified")
	}
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{Type: cfg.Type, Available: ListProviders()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// ListProviders returns all registered provider names, sorted.
func ListProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownProviderError is returned when no provider matches the config type.
type UnknownProviderError struct {
	Type      string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown catalog type %q (available: %v)", e.Type, e.Available)
}
