package complete

import (
	"time"
)

// Options configures one pipeline invocation.
type Options struct {
	// Weights tunes ranking; the zero value means defaults.
	Weights RankWeights

	// MaxSuggestions caps the result list. Zero means unlimited.
	MaxSuggestions int

	// CollectTiming records per-stage durations in the result. Timing never
	// alters outputs.
	CollectTiming bool
}

// StageTiming is the duration of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is one completion response: suggestions ranked best-first plus the
// detected context, so callers can render section-aware UI.
type Result struct {
	Suggestions []Candidate
	Context     Context
	Timing      []StageTiming
}

// Run executes the completion pipeline: tokenize, build the recovery tree,
// detect the cursor's section, analyze scope, then generate, filter, rank,
// and dedupe candidates. It is synchronous and side-effect-free; every call
// takes its own snapshot and returns a fresh result, so callers may invoke
// it concurrently and discard stale results freely.
func Run(sql string, cursor int, schema *Schema, opts Options) Result {
	var res Result
	var timer stageTimer
	if opts.CollectTiming {
		timer.enabled = true
	}

	timer.start()
	buf := Tokenize(sql, cursor)
	timer.record("tokenize", &res)

	// The one required short-circuit: no suggestions of any category inside
	// a string or comment.
	if buf.InsideStringOrComment() {
		res.Context = Context{Section: SectionUnknown}
		return res
	}

	timer.start()
	tree := BuildTree(buf.Tokens, len(buf.SQL))
	timer.record("tree", &res)

	timer.start()
	ctx := DetectSection(buf, tree)
	timer.record("section", &res)
	res.Context = ctx

	timer.start()
	scope := AnalyzeScope(ctx, buf, tree, schema)
	timer.record("scope", &res)

	timer.start()
	cands := GenerateCandidates(ctx, scope, schema)
	timer.record("generate", &res)

	partial := buf.PartialToken()
	if partial == "" {
		// Keyword-like partials (e.g. "SEL") tokenize as keywords once they
		// hit a full word; the section detector still reports them.
		partial = ctx.PartialToken
	}

	timer.start()
	cands = FilterCandidates(cands, partial)
	cands = Rank(cands, partial, opts.Weights)
	cands = Dedupe(cands)
	timer.record("rank", &res)

	if opts.MaxSuggestions > 0 && len(cands) > opts.MaxSuggestions {
		cands = cands[:opts.MaxSuggestions]
	}
	res.Suggestions = cands
	return res
}

type stageTimer struct {
	enabled bool
	at      time.Time
}

func (t *stageTimer) start() {
	if t.enabled {
		t.at = time.Now()
	}
}

func (t *stageTimer) record(stage string, res *Result) {
	if !t.enabled {
		return
	}
	res.Timing = append(res.Timing, StageTiming{Stage: stage, Duration: time.Since(t.at)})
}
