package complete

import (
	"sort"
	"strings"
)

// RankWeights tunes the relative score contributions. Zero values fall back
// to the defaults, so a partially specified configuration still ranks sanely.
type RankWeights struct {
	Prefix    int `koanf:"prefix"`
	Substring int `koanf:"substring"`
	Exact     int `koanf:"exact"`
	CaseMatch int `koanf:"case_match"`
}

// DefaultRankWeights is the scoring profile used when the caller does not
// override weights.
var DefaultRankWeights = RankWeights{
	Prefix:    100,
	Substring: 40,
	Exact:     150,
	CaseMatch: 5,
}

func (w RankWeights) normalized() RankWeights {
	d := DefaultRankWeights
	if w.Prefix == 0 {
		w.Prefix = d.Prefix
	}
	if w.Substring == 0 {
		w.Substring = d.Substring
	}
	if w.Exact == 0 {
		w.Exact = d.Exact
	}
	if w.CaseMatch == 0 {
		w.CaseMatch = d.CaseMatch
	}
	return w
}

// Kind priority when the textual score ties: columns and aliases are the
// most likely intent, keywords the least.
var kindPriority = map[CandidateKind]int{
	CandidateColumn:   6,
	CandidateAlias:    5,
	CandidateTable:    4,
	CandidateFunction: 3,
	CandidateSchema:   2,
	CandidateOperator: 1,
	CandidateKeyword:  0,
}

// FilterCandidates drops candidates that do not match the partial token with
// a case-insensitive substring test. An empty partial keeps everything.
func FilterCandidates(cands []Candidate, partial string) []Candidate {
	if partial == "" {
		return cands
	}
	lower := strings.ToLower(partial)
	out := cands[:0]
	for _, c := range cands {
		if strings.Contains(strings.ToLower(c.Value), lower) {
			out = append(out, c)
		}
	}
	return out
}

// Rank orders candidates best-first. The sort is deterministic: score, then
// kind priority, then shorter value, then lexical.
func Rank(cands []Candidate, partial string, weights RankWeights) []Candidate {
	w := weights.normalized()
	type ranked struct {
		cand  Candidate
		score int
	}
	rs := make([]ranked, len(cands))
	for i, c := range cands {
		rs[i] = ranked{cand: c, score: score(c, partial, w)}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].score != rs[j].score {
			return rs[i].score > rs[j].score
		}
		pi, pj := kindPriority[rs[i].cand.Kind], kindPriority[rs[j].cand.Kind]
		if pi != pj {
			return pi > pj
		}
		if len(rs[i].cand.Value) != len(rs[j].cand.Value) {
			return len(rs[i].cand.Value) < len(rs[j].cand.Value)
		}
		return rs[i].cand.Value < rs[j].cand.Value
	})
	for i := range rs {
		cands[i] = rs[i].cand
	}
	return cands
}

// score measures how well a single candidate matches the typed partial.
func score(c Candidate, partial string, w RankWeights) int {
	if partial == "" {
		return kindPriority[c.Kind]
	}
	lv := strings.ToLower(c.Value)
	lp := strings.ToLower(partial)

	s := 0
	switch {
	case lv == lp:
		s += w.Exact
	case strings.HasPrefix(lv, lp):
		s += w.Prefix
	case strings.Contains(lv, lp):
		s += w.Substring
	}
	if strings.HasPrefix(c.Value, partial) {
		s += w.CaseMatch
	}
	// Closer lengths score slightly higher, so "id" beats "identity_seed"
	// for the partial "id" even within the prefix tier.
	if diff := len(c.Value) - len(partial); diff > 0 {
		s -= min(diff, 20)
	}
	return s
}

// Dedupe removes repeated (value, kind) pairs, keeping the first and
// therefore best-ranked occurrence.
func Dedupe(cands []Candidate) []Candidate {
	type key struct {
		value string
		kind  CandidateKind
	}
	seen := make(map[key]struct{}, len(cands))
	out := cands[:0]
	for _, c := range cands {
		k := key{strings.ToLower(c.Value), c.Kind}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}
