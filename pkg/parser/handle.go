package parser

import (
	"context"
	"sync"
)

// Handle is the process-wide readiness gate in front of the parser. The
// parser's one-time initialization runs on the first Open; until it
// completes, StatementStarts reports ErrNotReady and callers fall back to
// tokenizer-only heuristics. After the gate opens every call is synchronous
// and reentrant.
type Handle struct {
	openOnce sync.Once
	ready    chan struct{}
	err      error
}

// NewHandle returns an unopened handle.
func NewHandle() *Handle {
	return &Handle{ready: make(chan struct{})}
}

// Open runs initialization once and closes the readiness gate. Subsequent
// calls return the first call's outcome.
func (h *Handle) Open(ctx context.Context) error {
	h.openOnce.Do(func() {
		defer close(h.ready)
		h.err = h.init(ctx)
	})
	select {
	case <-h.ready:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// init warms the parser's lookup tables. Kept separate from Open so a
// heavier backend (a loaded grammar runtime) can slot in without changing
// the gate.
func (h *Handle) init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Touch the keyword table once so the first real parse pays no lazy
	// initialization cost.
	_, _ = Parse("select 1")
	return nil
}

// Ready reports whether initialization has completed successfully.
func (h *Handle) Ready() bool {
	select {
	case <-h.ready:
		return h.err == nil
	default:
		return false
	}
}

// WaitReady blocks until the gate opens or the context ends.
func (h *Handle) WaitReady(ctx context.Context) error {
	select {
	case <-h.ready:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatementStarts implements the completion engine's parser collaborator.
// Before readiness it returns ErrNotReady so the caller degrades instead of
// blocking.
func (h *Handle) StatementStarts(sql string) ([]int, error) {
	if !h.Ready() {
		return nil, ErrNotReady
	}
	script, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	return script.Starts(), nil
}
