package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcomplete/internal/cli/config"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// CompleteOptions holds options for the complete command.
type CompleteOptions struct {
	Cursor int
	Stdin  bool
	Timing bool
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	opts := &CompleteOptions{Cursor: -1}

	cmd := &cobra.Command{
		Use:   "complete [sql]",
		Short: "Suggest completions for a SQL buffer",
		Long: `Run the completion pipeline against a SQL buffer and print ranked
suggestions. The buffer does not need to parse; completion works on
partial statements.`,
		Example: `  # Complete at the end of the buffer
  leapcomplete complete "SELECT u. FROM users u" --cursor 9 --schema db.yaml

  # Read the buffer from stdin
  cat query.sql | leapcomplete complete --stdin --cursor 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Cursor, "cursor", -1, "Cursor byte offset (default: end of buffer)")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read the SQL buffer from stdin")
	cmd.Flags().BoolVar(&opts.Timing, "timing", false, "Print per-stage timing")

	return cmd
}

func runComplete(cmd *cobra.Command, args []string, opts *CompleteOptions) error {
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(cmd.Context())

	var sql string
	switch {
	case opts.Stdin:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		sql = string(data)
	case len(args) == 1:
		sql = args[0]
	default:
		return fmt.Errorf("provide a SQL buffer as an argument or use --stdin")
	}

	cursor := opts.Cursor
	if cursor < 0 {
		cursor = len(sql)
	}

	schema, err := loadSchema(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	result := complete.Run(sql, cursor, schema, complete.Options{
		Weights:        cfg.RankWeights,
		MaxSuggestions: cfg.MaxSuggestions,
		CollectTiming:  opts.Timing,
	})

	if err := renderSuggestions(cmd.OutOrStdout(), result, cfg.Output); err != nil {
		return err
	}
	if opts.Timing {
		renderTimings(cmd.OutOrStdout(), result.Timing)
	}
	return nil
}
