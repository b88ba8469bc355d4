package complete

import (
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Tables: []Table{
			{Name: "users", Columns: []Column{{Name: "id", Type: "integer"}, {Name: "name", Type: "text"}, {Name: "email", Type: "text"}}},
			{Name: "orders", Columns: []Column{{Name: "id", Type: "integer"}, {Name: "user_id", Type: "integer"}, {Name: "total", Type: "numeric"}}},
			{Schema: "analytics", Name: "events", Columns: []Column{{Name: "id", Type: "integer"}, {Name: "kind", Type: "text"}}},
		},
		Functions: []Function{
			{Name: "count", Arguments: []string{"any"}, ReturnType: "bigint"},
			{Name: "lower", Arguments: []string{"text"}, ReturnType: "text"},
		},
	}
}

func analyze(sql string, cursor int, schema *Schema) ScopeInfo {
	buf := Tokenize(sql, cursor)
	tree := BuildTree(buf.Tokens, len(buf.SQL))
	ctx := DetectSection(buf, tree)
	return AnalyzeScope(ctx, buf, tree, schema)
}

func findEntry(info ScopeInfo, name string) *ScopeEntry {
	for i := range info.Entries {
		if info.Entries[i].EffectiveName() == name {
			return &info.Entries[i]
		}
	}
	return nil
}

func TestAnalyzeScopeSimpleFrom(t *testing.T) {
	sql := "SELECT  FROM users"
	info := analyze(sql, 7, testSchema())

	e := findEntry(info, "users")
	if e == nil {
		t.Fatalf("users not in scope: %+v", info.Entries)
	}
	if e.Origin != OriginFrom {
		t.Errorf("expected from origin, got %v", e.Origin)
	}
	if e.Table == nil {
		t.Fatal("users should resolve against the snapshot")
	}
	if len(e.ColumnNames()) != 3 {
		t.Errorf("expected 3 columns, got %v", e.ColumnNames())
	}
}

func TestAnalyzeScopeAlias(t *testing.T) {
	for _, sql := range []string{
		"SELECT  FROM users u",
		"SELECT  FROM users AS u",
	} {
		info := analyze(sql, 7, testSchema())
		e := findEntry(info, "u")
		if e == nil {
			t.Fatalf("%q: alias u not in scope: %+v", sql, info.Entries)
		}
		if e.Name != "users" || e.Alias != "u" {
			t.Errorf("%q: expected users aliased u, got %+v", sql, e)
		}
		if e.Table == nil {
			t.Errorf("%q: aliased table should still resolve", sql)
		}
	}
}

func TestAnalyzeScopeJoin(t *testing.T) {
	sql := "SELECT  FROM users u JOIN orders o ON u.id = o.user_id"
	info := analyze(sql, 7, testSchema())

	u := findEntry(info, "u")
	o := findEntry(info, "o")
	if u == nil || o == nil {
		t.Fatalf("expected both join sides in scope: %+v", info.Entries)
	}
	if u.Origin != OriginFrom {
		t.Errorf("expected from origin for users, got %v", u.Origin)
	}
	if o.Origin != OriginJoin {
		t.Errorf("expected join origin for orders, got %v", o.Origin)
	}
}

func TestAnalyzeScopeSchemaQualified(t *testing.T) {
	sql := "SELECT  FROM analytics.events e"
	info := analyze(sql, 7, testSchema())

	e := findEntry(info, "e")
	if e == nil {
		t.Fatalf("events not in scope: %+v", info.Entries)
	}
	if e.Schema != "analytics" || e.Name != "events" {
		t.Errorf("expected analytics.events, got %q.%q", e.Schema, e.Name)
	}
	if e.Table == nil {
		t.Error("qualified table should resolve against the snapshot")
	}
}

func TestAnalyzeScopeCTE(t *testing.T) {
	sql := "WITH recent AS (SELECT id, user_id FROM orders) SELECT  FROM recent"
	info := analyze(sql, len(sql)-12, testSchema())

	e := findEntry(info, "recent")
	if e == nil {
		t.Fatalf("recent not in scope: %+v", info.Entries)
	}
	if e.Origin != OriginCTE {
		t.Errorf("expected cte origin, got %v", e.Origin)
	}
	cols := e.ColumnNames()
	if len(cols) != 2 || cols[0] != "id" || cols[1] != "user_id" {
		t.Errorf("expected derived columns [id user_id], got %v", cols)
	}
	// The CTE name must win over any snapshot table of the same name.
	if e.Table != nil {
		t.Error("a CTE entry carries no snapshot table")
	}
}

func TestAnalyzeScopeCTEDeclaredColumns(t *testing.T) {
	sql := "WITH r (a, b) AS (SELECT id, total FROM orders) SELECT  FROM r"
	info := analyze(sql, len(sql), testSchema())

	e := findEntry(info, "r")
	if e == nil {
		t.Fatalf("r not in scope: %+v", info.Entries)
	}
	cols := e.ColumnNames()
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Errorf("declared column list should win, got %v", cols)
	}
}

func TestAnalyzeScopeCTENotVisibleInOwnBody(t *testing.T) {
	sql := "WITH r AS (SELECT  FROM "
	info := analyze(sql, len(sql), testSchema())

	if e := findEntry(info, "r"); e != nil {
		t.Errorf("a non-recursive CTE is not visible inside its own body: %+v", e)
	}
}

func TestAnalyzeScopeRecursiveCTEVisibleInBody(t *testing.T) {
	sql := "WITH RECURSIVE r AS (SELECT id FROM users UNION SELECT  FROM "
	info := analyze(sql, len(sql), testSchema())

	if e := findEntry(info, "r"); e == nil {
		t.Errorf("a RECURSIVE CTE is visible inside its own body: %+v", info.Entries)
	}
}

func TestAnalyzeScopeDerivedTable(t *testing.T) {
	sql := "SELECT  FROM (SELECT id, name FROM users) d"
	info := analyze(sql, 7, testSchema())

	e := findEntry(info, "d")
	if e == nil {
		t.Fatalf("derived table d not in scope: %+v", info.Entries)
	}
	cols := e.ColumnNames()
	if len(cols) != 2 || cols[0] != "id" || cols[1] != "name" {
		t.Errorf("expected derived output [id name], got %v", cols)
	}
	if e.Opaque {
		t.Error("a statically known output list is not opaque")
	}
}

func TestAnalyzeScopeDerivedTableStarIsOpaque(t *testing.T) {
	sql := "SELECT  FROM (SELECT * FROM users) d"
	info := analyze(sql, 7, testSchema())

	e := findEntry(info, "d")
	if e == nil {
		t.Fatalf("derived table d not in scope: %+v", info.Entries)
	}
	if !e.Opaque {
		t.Error("star expansion should mark the entry opaque")
	}
	if len(e.ColumnNames()) != 0 {
		t.Errorf("opaque entries carry no columns, got %v", e.ColumnNames())
	}
}

func TestAnalyzeScopeCorrelatedSubquery(t *testing.T) {
	sql := "SELECT * FROM users u WHERE EXISTS (SELECT 1 FROM orders o WHERE "
	info := analyze(sql, len(sql), testSchema())

	o := findEntry(info, "o")
	u := findEntry(info, "u")
	if o == nil || u == nil {
		t.Fatalf("expected inner and outer tables in scope: %+v", info.Entries)
	}
	if o.Origin != OriginFrom {
		t.Errorf("inner table keeps its own origin, got %v", o.Origin)
	}
	if u.Origin != OriginOuter {
		t.Errorf("outer table should be marked correlated, got %v", u.Origin)
	}

	// Innermost scope comes first.
	var oi, ui int
	for i := range info.Entries {
		switch info.Entries[i].EffectiveName() {
		case "o":
			oi = i
		case "u":
			ui = i
		}
	}
	if oi > ui {
		t.Errorf("inner entry should precede the outer one: o at %d, u at %d", oi, ui)
	}
}

func TestAnalyzeScopeUpdateTarget(t *testing.T) {
	sql := "UPDATE users SET "
	info := analyze(sql, len(sql), testSchema())

	e := findEntry(info, "users")
	if e == nil {
		t.Fatalf("update target not in scope: %+v", info.Entries)
	}
	if e.Origin != OriginTarget {
		t.Errorf("expected target origin, got %v", e.Origin)
	}
}

func TestAnalyzeScopeInsertTarget(t *testing.T) {
	sql := "INSERT INTO orders (id, total) VALUES "
	info := analyze(sql, len(sql), testSchema())

	e := findEntry(info, "orders")
	if e == nil {
		t.Fatalf("insert target not in scope: %+v", info.Entries)
	}
	if e.Origin != OriginTarget {
		t.Errorf("expected target origin, got %v", e.Origin)
	}
}

func TestAnalyzeScopeMultiStatementIsolation(t *testing.T) {
	sql := "SELECT a FROM users; SELECT b FROM orders WHERE "
	info := analyze(sql, len(sql), testSchema())

	if findEntry(info, "users") != nil {
		t.Errorf("the first statement's tables must not leak: %+v", info.Entries)
	}
	if findEntry(info, "orders") == nil {
		t.Errorf("the cursor statement's table should be in scope: %+v", info.Entries)
	}
}

func TestScopeResolveAliasShadowsTable(t *testing.T) {
	info := ScopeInfo{Entries: []ScopeEntry{
		{Name: "orders"},
		{Name: "users", Alias: "orders"},
	}}

	e := info.Resolve("orders")
	if e == nil || e.Name != "users" {
		t.Errorf("an explicit alias shadows a bare table name, got %+v", e)
	}
}

func TestScopeResolveCaseInsensitive(t *testing.T) {
	info := ScopeInfo{Entries: []ScopeEntry{{Name: "Users", Alias: "U"}}}

	if info.Resolve("u") == nil {
		t.Error("alias resolution should be case-insensitive")
	}
	if info.Resolve("users") == nil {
		t.Error("name resolution should be case-insensitive")
	}
	if info.Resolve("missing") != nil {
		t.Error("unknown names resolve to nil")
	}
}

func TestAnalyzeScopeEmptyInput(t *testing.T) {
	info := analyze("", 0, testSchema())
	if len(info.Entries) != 0 {
		t.Errorf("empty input yields an empty scope, got %+v", info.Entries)
	}
}
