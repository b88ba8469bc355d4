package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Provider {
		return &DuckDBProvider{logger: logger}
	})
}

// DuckDBProvider introspects a DuckDB database.
type DuckDBProvider struct {
	db     *sql.DB
	logger *slog.Logger
}

func (p *DuckDBProvider) Name() string { return "duckdb" }

// Connect opens the database. An empty path means in-memory.
func (p *DuckDBProvider) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping duckdb: %w", err)
	}
	p.db = db
	return nil
}

func (p *DuckDBProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Load reads tables and columns from information_schema and scalar and
// aggregate functions from duckdb_functions().
func (p *DuckDBProvider) Load(ctx context.Context) (*complete.Schema, error) {
	if p.db == nil {
		return nil, fmt.Errorf("duckdb: not connected")
	}

	schema := &complete.Schema{}
	tables, err := loadInformationSchema(ctx, p.db, `
		SELECT table_schema, table_name, column_name, data_type
		FROM information_schema.columns
		ORDER BY table_schema, table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("duckdb columns: %w", err)
	}
	schema.Tables = tables

	rows, err := p.db.QueryContext(ctx, `
		SELECT DISTINCT schema_name, function_name, return_type
		FROM duckdb_functions()
		WHERE function_type IN ('scalar', 'aggregate')
		ORDER BY schema_name, function_name`)
	if err != nil {
		return nil, fmt.Errorf("duckdb functions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var fn complete.Function
		var ret sql.NullString
		if err := rows.Scan(&fn.Schema, &fn.Name, &ret); err != nil {
			return nil, fmt.Errorf("scan duckdb function: %w", err)
		}
		fn.ReturnType = ret.String
		schema.Functions = append(schema.Functions, fn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duckdb functions: %w", err)
	}

	p.logger.Debug("catalog loaded",
		"provider", "duckdb",
		"tables", len(schema.Tables),
		"functions", len(schema.Functions))
	return schema, nil
}

// loadInformationSchema runs a (schema, table, column, type) query and
// groups rows into tables. Shared by the duckdb and postgres providers.
func loadInformationSchema(ctx context.Context, db *sql.DB, query string, args ...any) ([]complete.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []complete.Table
	var cur *complete.Table
	for rows.Next() {
		var schemaName, tableName, colName, colType string
		if err := rows.Scan(&schemaName, &tableName, &colName, &colType); err != nil {
			return nil, err
		}
		if cur == nil || cur.Schema != schemaName || cur.Name != tableName {
			tables = append(tables, complete.Table{Schema: schemaName, Name: tableName})
			cur = &tables[len(tables)-1]
		}
		cur.Columns = append(cur.Columns, complete.Column{Name: colName, Type: colType})
	}
	return tables, rows.Err()
}
