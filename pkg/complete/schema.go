package complete

import "strings"

// Schema is the read-only snapshot of database metadata a pipeline
// invocation resolves names against. Callers supply a fresh snapshot on
// every call; the engine never mutates or retains one. How the snapshot is
// produced (introspection, files, caches) is entirely the caller's concern.
type Schema struct {
	Tables    []Table
	Functions []Function
}

// Table is one reachable table or view.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column is a table column.
type Column struct {
	Name string
	Type string
}

// Function is a callable function with its signature.
type Function struct {
	Schema     string
	Name       string
	Arguments  []string
	ReturnType string
}

// QualifiedName returns "schema.name", or just the name when unqualified.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Signature renders the function's call signature.
func (f *Function) Signature() string {
	sig := f.Name + "(" + strings.Join(f.Arguments, ", ") + ")"
	if f.ReturnType != "" {
		sig += " -> " + f.ReturnType
	}
	return sig
}

// TableNamed looks up a table by name with an optional schema qualifier.
// Matching is case-insensitive. A nil receiver resolves nothing.
func (s *Schema) TableNamed(qualifier, name string) *Table {
	if s == nil {
		return nil
	}
	for i := range s.Tables {
		t := &s.Tables[i]
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		if qualifier == "" || strings.EqualFold(t.Schema, qualifier) {
			return t
		}
	}
	return nil
}

// SchemaNames returns the distinct schema qualifiers present, in first-seen
// order.
func (s *Schema) SchemaNames() []string {
	if s == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var names []string
	for i := range s.Tables {
		sc := s.Tables[i].Schema
		if sc == "" {
			continue
		}
		key := strings.ToLower(sc)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, sc)
	}
	return names
}
