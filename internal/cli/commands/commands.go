// Package commands implements the leapcomplete subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcomplete/internal/catalog"
	"github.com/leapstack-labs/leapcomplete/internal/cli/config"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
	"github.com/leapstack-labs/leapcomplete/pkg/parser"
)

// loadSchema connects the configured catalog and takes one snapshot. A
// missing catalog is not an error; completion then offers keywords and
// structure only.
func loadSchema(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*complete.Schema, error) {
	if cfg.Catalog.Type == "" {
		logger.Debug("no catalog configured")
		return nil, nil
	}
	p, err := catalog.New(cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}
	if err := p.Connect(ctx, cfg.Catalog); err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return snap, nil
}

// openParser opens a parser handle synchronously. CLI commands are
// one-shot, so there is no value in degraded pre-readiness behavior here.
func openParser(ctx context.Context) (*parser.Handle, error) {
	h := parser.NewHandle()
	if err := h.Open(ctx); err != nil {
		return nil, fmt.Errorf("parser init: %w", err)
	}
	return h, nil
}
