package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcomplete/internal/cli/config"
	"github.com/leapstack-labs/leapcomplete/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC and provides
completion, folding ranges, signature help, and parse diagnostics. The
schema catalog comes from the leapcomplete config file; file-backed
catalogs reload automatically when the file changes.`,
		Example: `  # Start LSP server (usually launched by an editor)
  leapcomplete lsp --schema db.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()
			logger := config.GetLogger(cmd.Context())
			server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Config{
				Catalog:        cfg.Catalog,
				MaxSuggestions: cfg.MaxSuggestions,
				Weights:        cfg.RankWeights,
			}, logger)
			return server.Run()
		},
	}
}
