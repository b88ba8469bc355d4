package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcomplete/internal/cli/config"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// SplitOptions holds options for the split command.
type SplitOptions struct {
	Stdin bool
	Folds bool
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	opts := &SplitOptions{}

	cmd := &cobra.Command{
		Use:   "split [sql]",
		Short: "Split a buffer into statement ranges",
		Long: `Split a SQL buffer into per-statement ranges, optionally with the
foldable clause regions of each statement. Unparseable buffers degrade
to a single whole-buffer range.`,
		Example: `  leapcomplete split "SELECT 1; SELECT 2;"
  leapcomplete split --folds --stdin < queries.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read the SQL buffer from stdin")
	cmd.Flags().BoolVar(&opts.Folds, "folds", false, "Include fold regions")

	return cmd
}

func runSplit(cmd *cobra.Command, args []string, opts *SplitOptions) error {
	cfg := config.GetCurrentConfig()

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

	handle, err := openParser(cmd.Context())
	if err != nil {
		return err
	}
	info := complete.BuildEditorInfo(sql, handle)

	if cfg.Output == "json" {
		return renderSplitJSON(cmd.OutOrStdout(), sql, info, opts.Folds)
	}
	return renderSplitTable(cmd.OutOrStdout(), sql, info, opts.Folds)
}

func renderSplitJSON(w io.Writer, sql string, info complete.EditorInfo, folds bool) error {
	type rangeOut struct {
		From int    `json:"from"`
		To   int    `json:"to"`
		Text string `json:"text"`
	}
	type foldOut struct {
		From    int    `json:"from"`
		To      int    `json:"to"`
		Keyword string `json:"keyword"`
	}
	out := struct {
		Statements  []rangeOut `json:"statements"`
		FoldRegions []foldOut  `json:"foldRegions,omitempty"`
	}{}
	for _, r := range info.Statements {
		out.Statements = append(out.Statements, rangeOut{From: r.From, To: r.To, Text: r.Text(sql)})
	}
	if folds {
		for _, f := range info.FoldRegions {
			out.FoldRegions = append(out.FoldRegions, foldOut{From: f.From, To: f.To, Keyword: f.Keyword})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderSplitTable(w io.Writer, sql string, info complete.EditorInfo, folds bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "From", "To", "Statement"})
	for i, r := range info.Statements {
		t.AppendRow(table.Row{i + 1, r.From, r.To, truncate(r.Text(sql), 60)})
	}
	t.Render()

	if folds && len(info.FoldRegions) > 0 {
		ft := table.NewWriter()
		ft.SetOutputMirror(w)
		ft.SetStyle(table.StyleLight)
		ft.AppendHeader(table.Row{"Keyword", "From", "To"})
		for _, f := range info.FoldRegions {
			ft.AppendRow(table.Row{f.Keyword, f.From, f.To})
		}
		ft.Render()
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
