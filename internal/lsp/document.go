package lsp

import (
	"strings"
	"sync"
)

// Document is one open text document.
type Document struct {
	URI     string
	Content string
	Version int

	// lines holds the byte offset of each line start, for position math.
	lines []int
}

// DocumentStore tracks open documents. The server uses full-document sync,
// so updates replace content wholesale.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]*Document)}
}

// Open adds or replaces a document.
func (s *DocumentStore) Open(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = &Document{
		URI:     uri,
		Content: content,
		Version: version,
		lines:   lineOffsets(content),
	}
}

// Close removes a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

// Get returns the document for uri, or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

// Update replaces a document's content.
func (s *DocumentStore) Update(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[uri]; ok {
		doc.Content = content
		doc.Version = version
		doc.lines = lineOffsets(content)
	}
}

func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// Offset converts a position to a byte offset, clamped to the document.
func (d *Document) Offset(pos Position) int {
	if d == nil || len(d.lines) == 0 {
		return 0
	}
	line := int(pos.Line)
	if line >= len(d.lines) {
		return len(d.Content)
	}
	offset := d.lines[line] + int(pos.Character)
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	return offset
}

// PositionAt converts a byte offset to a position.
func (d *Document) PositionAt(offset int) Position {
	if d == nil || len(d.lines) == 0 {
		return Position{}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	line := 0
	for i, start := range d.lines {
		if start > offset {
			break
		}
		line = i
	}
	return Position{Line: uint32(line), Character: uint32(offset - d.lines[line])}
}

// URIToPath strips the file:// scheme from a URI.
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// PathToURI prefixes a path with the file:// scheme.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
