package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, &CompletionList{Items: []CompletionItem{}}, nil)
		return nil
	}

	cursor := doc.Offset(params.Position)
	result := complete.Run(doc.Content, cursor, s.currentSchema(), complete.Options{
		Weights:        s.config.Weights,
		MaxSuggestions: s.config.MaxSuggestions,
	})

	items := make([]CompletionItem, 0, len(result.Suggestions))
	for i, c := range result.Suggestions {
		items = append(items, completionItem(c, i))
	}
	s.sendResponse(msg.ID, &CompletionList{Items: items}, nil)
	return nil
}

// completionItem converts an engine candidate into an LSP item. SortText
// preserves the engine's ranking against client-side resorting.
func completionItem(c complete.Candidate, rank int) CompletionItem {
	item := CompletionItem{
		Label:    c.Value,
		Kind:     completionKind(c.Kind),
		SortText: fmt.Sprintf("%04d", rank),
	}
	switch {
	case c.Detail != "" && c.SourceTable != "":
		item.Detail = c.Detail
		item.Documentation = "from " + c.SourceTable
	case c.Detail != "":
		item.Detail = c.Detail
	case c.SourceTable != "":
		item.Detail = c.SourceTable
	}
	return item
}

func completionKind(kind complete.CandidateKind) CompletionItemKind {
	switch kind {
	case complete.CandidateColumn:
		return CompletionItemKindField
	case complete.CandidateTable:
		return CompletionItemKindClass
	case complete.CandidateAlias:
		return CompletionItemKindVariable
	case complete.CandidateFunction:
		return CompletionItemKindFunction
	case complete.CandidateSchema:
		return CompletionItemKindModule
	case complete.CandidateOperator:
		return CompletionItemKindOperator
	case complete.CandidateKeyword:
		return CompletionItemKindKeyword
	default:
		return CompletionItemKindText
	}
}
