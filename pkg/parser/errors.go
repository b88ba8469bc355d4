package parser

import "fmt"

// ParseError reports a structured failure at a byte offset. The parser never
// panics on malformed input; it either recovers or returns one of these.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// ErrNotReady is returned when a parse is requested before Open completes.
var ErrNotReady = fmt.Errorf("parser: not ready")
