package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func init() {
	Register("postgres", func(logger *slog.Logger) Provider {
		return &PostgresProvider{logger: logger}
	})
}

// PostgresProvider introspects a PostgreSQL database through pgx.
type PostgresProvider struct {
	db     *sql.DB
	logger *slog.Logger
}

func (p *PostgresProvider) Name() string { return "postgres" }

// Connect opens a connection using keyword/value DSN syntax.
func (p *PostgresProvider) Connect(ctx context.Context, cfg Config) error {
	db, err := sql.Open("pgx", buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	p.db = db
	return nil
}

func (p *PostgresProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Load reads user tables from information_schema and callable functions
// from pg_proc. System schemas are excluded; completing against pg_catalog
// internals is noise for query authors.
func (p *PostgresProvider) Load(ctx context.Context) (*complete.Schema, error) {
	if p.db == nil {
		return nil, fmt.Errorf("postgres: not connected")
	}

	schema := &complete.Schema{}
	tables, err := loadInformationSchema(ctx, p.db, `
		SELECT table_schema, table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("postgres columns: %w", err)
	}
	schema.Tables = tables

	rows, err := p.db.QueryContext(ctx, `
		SELECT n.nspname, p.proname,
		       pg_get_function_arguments(p.oid),
		       pg_get_function_result(p.oid)
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY n.nspname, p.proname`)
	if err != nil {
		return nil, fmt.Errorf("postgres functions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var fn complete.Function
		var args, ret sql.NullString
		if err := rows.Scan(&fn.Schema, &fn.Name, &args, &ret); err != nil {
			return nil, fmt.Errorf("scan postgres function: %w", err)
		}
		if args.String != "" {
			fn.Arguments = strings.Split(args.String, ", ")
		}
		fn.ReturnType = ret.String
		schema.Functions = append(schema.Functions, fn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postgres functions: %w", err)
	}

	p.logger.Debug("catalog loaded",
		"provider", "postgres",
		"tables", len(schema.Tables),
		"functions", len(schema.Functions))
	return schema, nil
}

// buildPostgresDSN assembles a keyword/value DSN with sane defaults.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if v, ok := cfg.Options["sslmode"]; ok {
		sslmode = v
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}

	var extra []string
	for k, v := range cfg.Options {
		if k == "sslmode" {
			continue
		}
		extra = append(extra, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(extra)
	return strings.Join(append(parts, extra...), " ")
}
