package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcomplete/internal/catalog"
	"github.com/leapstack-labs/leapcomplete/pkg/complete"
	"github.com/leapstack-labs/leapcomplete/pkg/parser"
)

// Config holds server settings resolved before startup.
type Config struct {
	// Catalog selects the schema source.
	Catalog catalog.Config

	// MaxSuggestions caps completion responses. Zero means unlimited.
	MaxSuggestions int

	// Weights tunes completion ranking.
	Weights complete.RankWeights
}

// Server implements the Language Server Protocol over stdio framing.
type Server struct {
	documents *DocumentStore
	config    Config

	// parserHandle gates statement-grade parsing; completions degrade to
	// tokenizer heuristics until it opens.
	parserHandle *parser.Handle

	// schema is the current snapshot; replaced wholesale on reload.
	schemaMu sync.RWMutex
	schema   *complete.Schema

	provider catalog.Provider

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	logger *slog.Logger

	initialized bool
	shutdown    bool
	shutdownMu  sync.RWMutex
}

// NewServer creates a server reading requests from reader and writing
// responses to writer. A nil logger logs to stderr.
func NewServer(reader io.Reader, writer io.Writer, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		documents:    NewDocumentStore(),
		config:       cfg,
		parserHandle: parser.NewHandle(),
		reader:       bufio.NewReader(reader),
		writer:       writer,
		logger:       logger,
	}
}

// Run processes JSON-RPC messages until the client disconnects or asks for
// shutdown.
func (s *Server) Run() error {
	s.logger.Info("LSP server starting")

	for {
		s.shutdownMu.RLock()
		done := s.shutdown
		s.shutdownMu.RUnlock()
		if done {
			return nil
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			s.logger.Error("read message", "error", err)
			continue
		}
		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("handle message", "method", msg.Method, "error", err)
		}
	}
}

// JSONRPCMessage is a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError is a JSON-RPC error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) readMessage() (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}
	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

func (s *Server) sendResponse(id *json.RawMessage, result any, rpcErr *JSONRPCError) {
	msg := JSONRPCMessage{JSONRPC: "2.0", ID: id}
	if rpcErr != nil {
		msg.Error = rpcErr
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}
	s.writeMessage(&msg)
}

func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}
	s.writeMessage(&msg)
}

func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal message", "error", err)
		return
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	case "textDocument/signatureHelp":
		return s.handleSignatureHelp(msg)
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    -32601,
				Message: "method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{".", " ", "("},
			},
			FoldingRangeProvider: true,
			SignatureHelpProvider: &SignatureHelpOptions{
				TriggerCharacters: []string{"(", ","},
			},
		},
	}
	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.initialized = true
	s.logger.Info("server initialized")

	// Parser warmup and catalog loading happen off the request loop;
	// completion degrades gracefully until both finish.
	go func() {
		if err := s.parserHandle.Open(context.Background()); err != nil {
			s.logger.Error("parser init", "error", err)
		}
	}()
	go s.loadCatalog()

	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	if s.provider != nil {
		_ = s.provider.Close()
	}
	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.logger.Info("server exit")
	os.Exit(0)
	return nil
}

// --- Document events ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(params.TextDocument.URI)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.documents.Close(params.TextDocument.URI)
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	// Full sync: the last change carries the whole document.
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		s.documents.Update(params.TextDocument.URI, last.Text, params.TextDocument.Version)
	}
	s.publishDiagnostics(params.TextDocument.URI)
	return nil
}

// --- Schema snapshot ---

// loadCatalog connects the configured provider, takes the first snapshot,
// and starts the file watcher for file-backed catalogs.
func (s *Server) loadCatalog() {
	if s.config.Catalog.Type == "" {
		s.logger.Info("no catalog configured; completing without schema")
		return
	}

	ctx := context.Background()
	p, err := catalog.New(s.config.Catalog, s.logger)
	if err != nil {
		s.notifyCatalogError(err)
		return
	}
	if err := p.Connect(ctx, s.config.Catalog); err != nil {
		s.notifyCatalogError(err)
		return
	}
	s.provider = p

	if err := s.refreshSchema(ctx); err != nil {
		s.notifyCatalogError(err)
		return
	}

	if s.config.Catalog.Type == "yaml" {
		go s.watchSchemaFile(s.config.Catalog.Path)
	}
}

func (s *Server) notifyCatalogError(err error) {
	s.logger.Error("catalog", "error", err)
	s.sendNotification("window/showMessage", &ShowMessageParams{
		Type:    MessageTypeWarning,
		Message: "Schema catalog unavailable: " + err.Error(),
	})
}

func (s *Server) refreshSchema(ctx context.Context) error {
	snap, err := s.provider.Load(ctx)
	if err != nil {
		return err
	}
	s.schemaMu.Lock()
	s.schema = snap
	s.schemaMu.Unlock()
	s.logger.Info("schema loaded", "tables", len(snap.Tables), "functions", len(snap.Functions))
	return nil
}

func (s *Server) currentSchema() *complete.Schema {
	s.schemaMu.RLock()
	defer s.schemaMu.RUnlock()
	return s.schema
}
