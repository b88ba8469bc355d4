package lsp

import (
	"errors"

	"github.com/leapstack-labs/leapcomplete/pkg/parser"
)

// publishDiagnostics reports statement-level parse errors for a document.
// Only grammar-level problems surface here; the completion engine itself
// never produces diagnostics, since it is built to work on broken SQL.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	diagnostics := []Diagnostic{}
	if s.parserHandle.Ready() {
		if _, err := parser.Parse(doc.Content); err != nil {
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				start := doc.PositionAt(perr.Offset)
				diagnostics = append(diagnostics, Diagnostic{
					Range:    Range{Start: start, End: doc.PositionAt(perr.Offset + 1)},
					Severity: DiagnosticSeverityError,
					Source:   "leapcomplete",
					Message:  perr.Msg,
				})
			}
		}
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
