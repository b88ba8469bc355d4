package lsp

import (
	"encoding/json"
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func (s *Server) handleFoldingRange(msg *JSONRPCMessage) error {
	var params FoldingRangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []FoldingRange{}, nil)
		return nil
	}

	info := complete.BuildEditorInfo(doc.Content, s.statementParser())
	ranges := make([]FoldingRange, 0, len(info.FoldRegions))
	for _, region := range info.FoldRegions {
		start := doc.PositionAt(region.From)
		end := doc.PositionAt(region.To)
		// Folding is line-based; clause spans ending at a line start fold
		// up to the previous line.
		endLine := end.Line
		if end.Character == 0 && endLine > start.Line {
			endLine--
		}
		if endLine <= start.Line {
			continue
		}
		ranges = append(ranges, FoldingRange{
			StartLine: start.Line,
			EndLine:   endLine,
			Kind:      "region",
		})
	}
	s.sendResponse(msg.ID, ranges, nil)
	return nil
}

// statementParser returns the parser collaborator, or nil before readiness
// so the splitter falls back to whole-buffer heuristics.
func (s *Server) statementParser() complete.StatementParser {
	if !s.parserHandle.Ready() {
		return nil
	}
	return s.parserHandle
}

func (s *Server) handleSignatureHelp(msg *JSONRPCMessage) error {
	var params SignatureHelpParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}

	fc, ok := complete.FindFunctionContext(doc.Content, doc.Offset(params.Position))
	if !ok {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}

	help := &SignatureHelp{ActiveParameter: uint32(fc.ArgIndex)}
	schema := s.currentSchema()
	if schema != nil {
		for i := range schema.Functions {
			fn := &schema.Functions[i]
			if !strings.EqualFold(fn.Name, fc.Name) {
				continue
			}
			sig := SignatureInformation{Label: fn.Signature()}
			for _, arg := range fn.Arguments {
				sig.Parameters = append(sig.Parameters, ParameterInformation{Label: arg})
			}
			help.Signatures = append(help.Signatures, sig)
		}
	}
	if len(help.Signatures) == 0 {
		// Unknown function: still show the call name so the client renders
		// the active argument index.
		help.Signatures = []SignatureInformation{{Label: fc.Name + "(...)"}}
	}
	s.sendResponse(msg.ID, help, nil)
	return nil
}
