package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcomplete/internal/cli/config"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive completion playground",
		Long: `Start an interactive prompt with engine-driven tab completion. Typed
statements are analyzed, not executed: submitting a statement prints its
detected sections, scope, and fold structure.`,
		Example: `  leapcomplete repl --schema db.yaml`,
		RunE:    runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(cmd.Context())

	schema, err := loadSchema(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	handle, err := openParser(cmd.Context())
	if err != nil {
		return err
	}

	completer := &engineCompleter{
		schema: schema,
		opts: complete.Options{
			Weights:        cfg.RankWeights,
			MaxSuggestions: cfg.MaxSuggestions,
		},
	}

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".leapcomplete_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sql> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("initialize repl: %w", err)
	}
	defer func() { _ = rl.Close() }()

	printBanner(cmd.OutOrStdout(), schema)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			completer.setPrefix("")
			rl.SetPrompt("sql> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ".") {
			if quit := handleDotCommand(cmd.OutOrStdout(), trimmed, schema); quit {
				break
			}
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(trimmed, ";") {
			buf.WriteString("\n")
			completer.setPrefix(buf.String())
			rl.SetPrompt("...> ")
			continue
		}
		rl.SetPrompt("sql> ")
		completer.setPrefix("")

		sql := buf.String()
		buf.Reset()
		analyzeStatement(cmd.OutOrStdout(), sql, handle, schema)
	}
	return nil
}

// engineCompleter adapts the completion pipeline to readline's completer
// interface. prefix carries the lines of a multi-line statement typed so
// far, so completions on continuation lines see the whole buffer.
type engineCompleter struct {
	schema *complete.Schema
	opts   complete.Options

	mu     sync.Mutex
	prefix string
}

func (c *engineCompleter) setPrefix(p string) {
	c.mu.Lock()
	c.prefix = p
	c.mu.Unlock()
}

// Do implements readline.AutoCompleter. pos is a rune index into line.
func (c *engineCompleter) Do(line []rune, pos int) ([][]rune, int) {
	c.mu.Lock()
	prefix := c.prefix
	c.mu.Unlock()

	buffer := prefix + string(line[:pos])
	result := complete.Run(buffer, len(buffer), c.schema, c.opts)

	partial := result.Context.PartialToken
	var out [][]rune
	for _, cand := range result.Suggestions {
		// readline splices the returned runes after the cursor, so only
		// prefix-matching candidates insert cleanly.
		if !strings.HasPrefix(strings.ToLower(cand.Value), strings.ToLower(partial)) {
			continue
		}
		out = append(out, []rune(cand.Value[len(partial):]))
	}
	return out, len([]rune(partial))
}

func printBanner(w io.Writer, schema *complete.Schema) {
	out := termenv.NewOutput(w)
	title := out.String("leapcomplete").Foreground(out.Color("6")).Bold()
	_, _ = fmt.Fprintf(w, "%s interactive completion\n", title)
	if schema != nil {
		_, _ = fmt.Fprintf(w, "schema: %d tables, %d functions\n", len(schema.Tables), len(schema.Functions))
	} else {
		_, _ = fmt.Fprintln(w, "schema: none (keyword completion only)")
	}
	_, _ = fmt.Fprintln(w, "Type SQL ending with ; to analyze it, Tab to complete, .help for commands")
	_, _ = fmt.Fprintln(w)
}

func handleDotCommand(w io.Writer, line string, schema *complete.Schema) (quit bool) {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		_, _ = fmt.Fprint(w, `
Commands:
  .help             Show this help message
  .tables           List tables in the loaded schema
  .columns <table>  List columns of a table
  .quit / .exit     Exit

Tips:
  - Tab completes keywords, tables, columns, and aliases in context
  - End a statement with ; to see its detected structure
`)
	case ".tables":
		if schema == nil || len(schema.Tables) == 0 {
			_, _ = fmt.Fprintln(w, "(no schema loaded)")
			return false
		}
		for i := range schema.Tables {
			_, _ = fmt.Fprintln(w, schema.Tables[i].QualifiedName())
		}
	case ".columns":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(w, "Usage: .columns <table>")
			return false
		}
		t := schema.TableNamed("", parts[1])
		if t == nil {
			_, _ = fmt.Fprintf(w, "table %q not found\n", parts[1])
			return false
		}
		for _, col := range t.Columns {
			_, _ = fmt.Fprintf(w, "%-24s %s\n", col.Name, col.Type)
		}
	default:
		_, _ = fmt.Fprintf(w, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

// analyzeStatement prints what the engine sees in a submitted statement.
func analyzeStatement(w io.Writer, sql string, parser complete.StatementParser, schema *complete.Schema) {
	info := complete.BuildEditorInfo(sql, parser)
	for i, stmt := range info.Statements {
		result := complete.Run(sql, stmt.To, schema, complete.Options{})
		_, _ = fmt.Fprintf(w, "statement %d [%d:%d] section=%s\n",
			i+1, stmt.From, stmt.To, result.Context.Section)
	}
	for _, f := range info.FoldRegions {
		_, _ = fmt.Fprintf(w, "  fold %-8s [%d:%d]\n", f.Keyword, f.From, f.To)
	}
	_, _ = fmt.Fprintln(w)
}
