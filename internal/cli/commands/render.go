package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// suggestionRow is the JSON shape of one rendered suggestion.
type suggestionRow struct {
	Value  string `json:"value"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
	Source string `json:"source,omitempty"`
}

func renderSuggestions(w io.Writer, result complete.Result, format string) error {
	rows := make([]suggestionRow, 0, len(result.Suggestions))
	for _, c := range result.Suggestions {
		rows = append(rows, suggestionRow{
			Value:  c.Value,
			Kind:   c.Kind.String(),
			Detail: c.Detail,
			Source: c.SourceTable,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Section     string          `json:"section"`
			Suggestions []suggestionRow `json:"suggestions"`
		}{Section: result.Context.Section.String(), Suggestions: rows})
	case "csv":
		_, _ = fmt.Fprintln(w, "value,kind,detail,source")
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s,%s,%s,%s\n",
				escapeCSV(r.Value), r.Kind, escapeCSV(r.Detail), escapeCSV(r.Source))
		}
		return nil
	default:
		return renderSuggestionTable(w, result, rows)
	}
}

func renderSuggestionTable(w io.Writer, result complete.Result, rows []suggestionRow) error {
	_, _ = fmt.Fprintf(w, "Section: %s\n", result.Context.Section)
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(no suggestions)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Value", "Kind", "Detail", "Source"})
	for i, r := range rows {
		t.AppendRow(table.Row{i + 1, r.Value, r.Kind, r.Detail, r.Source})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d suggestions)\n", len(rows))
	return nil
}

func renderTimings(w io.Writer, timings []complete.StageTiming) {
	if len(timings) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\nStage timing:")
	for _, st := range timings {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", st.Stage, st.Duration)
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
