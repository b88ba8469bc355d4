package complete

import (
	"testing"
)

func TestRunRanksColumns(t *testing.T) {
	res := Run("SELECT na FROM users", 9, testSchema(), Options{})

	if res.Context.Section != SectionSelectList {
		t.Errorf("expected select-list, got %v", res.Context.Section)
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if res.Suggestions[0].Value != "name" {
		t.Errorf("expected the typed prefix to rank name first, got %v", res.Suggestions[0])
	}
}

func TestRunInsideString(t *testing.T) {
	res := Run("SELECT 'hello", 13, testSchema(), Options{})

	if len(res.Suggestions) != 0 {
		t.Errorf("no suggestions inside a string, got %v", res.Suggestions)
	}
	if res.Context.Section != SectionUnknown {
		t.Errorf("expected unknown section, got %v", res.Context.Section)
	}
}

func TestRunInsideComment(t *testing.T) {
	sql := "SELECT a -- partial"
	res := Run(sql, len(sql), testSchema(), Options{})
	if len(res.Suggestions) != 0 {
		t.Errorf("no suggestions inside a comment, got %v", res.Suggestions)
	}
}

func TestRunMaxSuggestions(t *testing.T) {
	res := Run("SELECT  FROM users", 7, testSchema(), Options{MaxSuggestions: 3})
	if len(res.Suggestions) != 3 {
		t.Errorf("expected the cap to apply, got %d", len(res.Suggestions))
	}
}

func TestRunDeduplicates(t *testing.T) {
	// id exists in both tables; the merged set must carry it once.
	sql := "SELECT  FROM users u JOIN orders o ON u.id = o.user_id"
	res := Run(sql, 7, testSchema(), Options{})

	var ids int
	for _, c := range res.Suggestions {
		if c.Value == "id" && c.Kind == CandidateColumn {
			ids++
		}
	}
	if ids != 1 {
		t.Errorf("expected exactly one id column suggestion, got %d", ids)
	}
}

func TestRunTimingDisabledByDefault(t *testing.T) {
	res := Run("SELECT 1", 8, nil, Options{})
	if len(res.Timing) != 0 {
		t.Errorf("timing must be opt-in, got %v", res.Timing)
	}
}

func TestRunTimingStages(t *testing.T) {
	res := Run("SELECT  FROM users", 7, testSchema(), Options{CollectTiming: true})

	expected := []string{"tokenize", "tree", "section", "scope", "generate", "rank"}
	if len(res.Timing) != len(expected) {
		t.Fatalf("expected %d stages, got %v", len(expected), res.Timing)
	}
	for i, s := range expected {
		if res.Timing[i].Stage != s {
			t.Errorf("stage %d: expected %q, got %q", i, s, res.Timing[i].Stage)
		}
	}
}

func TestRunTimingShortCircuit(t *testing.T) {
	res := Run("SELECT 'open", 12, testSchema(), Options{CollectTiming: true})
	if len(res.Timing) != 1 || res.Timing[0].Stage != "tokenize" {
		t.Errorf("the string short-circuit records only the tokenize stage, got %v", res.Timing)
	}
}

func TestRunEmptyBuffer(t *testing.T) {
	res := Run("", 0, testSchema(), Options{})

	var hasSelect bool
	for _, c := range res.Suggestions {
		if c.Value == "SELECT" && c.Kind == CandidateKeyword {
			hasSelect = true
		}
	}
	if !hasSelect {
		t.Errorf("an empty buffer suggests statement starters, got %v", res.Suggestions)
	}
}

func TestRunKeywordPartial(t *testing.T) {
	// "SEL" lexes as an identifier; the detector still reports the partial
	// and the starter keywords must filter down to it.
	res := Run("SEL", 3, testSchema(), Options{})

	if len(res.Suggestions) == 0 {
		t.Fatal("expected suggestions for a keyword prefix")
	}
	if res.Suggestions[0].Value != "SELECT" {
		t.Errorf("expected SELECT first, got %v", res.Suggestions[0])
	}
}

func TestRunCursorClamped(t *testing.T) {
	res := Run("SELECT  FROM users", 999, testSchema(), Options{})
	if res.Context.Section != SectionFrom {
		t.Errorf("an out-of-range cursor clamps to the buffer end, got %v", res.Context.Section)
	}
}

func TestRunIsPure(t *testing.T) {
	schema := testSchema()
	first := Run("SELECT  FROM users", 7, schema, Options{})
	second := Run("SELECT  FROM users", 7, schema, Options{})

	if len(first.Suggestions) != len(second.Suggestions) {
		t.Fatalf("repeated runs diverged: %d vs %d", len(first.Suggestions), len(second.Suggestions))
	}
	for i := range first.Suggestions {
		if first.Suggestions[i] != second.Suggestions[i] {
			t.Errorf("suggestion %d differs: %+v vs %+v", i, first.Suggestions[i], second.Suggestions[i])
		}
	}
}
