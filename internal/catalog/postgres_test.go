package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name: "basic connection",
			config: Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
		{
			name: "extra options sorted",
			config: Config{
				Database: "mydb",
				Options:  map[string]string{"search_path": "app", "connect_timeout": "5"},
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable connect_timeout=5 search_path=app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildPostgresDSN(tt.config)
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestPostgresProvider_Name(t *testing.T) {
	p := &PostgresProvider{}
	assert.Equal(t, "postgres", p.Name())
}

func TestPostgresProvider_LoadNotConnected(t *testing.T) {
	p := &PostgresProvider{}
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestPostgresProvider_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "data_type"}).
			AddRow("public", "users", "id", "integer").
			AddRow("public", "users", "name", "text").
			AddRow("public", "orders", "id", "integer").
			AddRow("sales", "orders", "total", "numeric"))

	mock.ExpectQuery("FROM pg_proc").WillReturnRows(
		sqlmock.NewRows([]string{"nspname", "proname", "args", "result"}).
			AddRow("public", "revenue", "since date, until date", "numeric").
			AddRow("public", "ping", "", "void"))

	p := &PostgresProvider{db: db, logger: discardLogger()}
	schema, err := p.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, schema.Tables, 3)
	assert.Equal(t, "users", schema.Tables[0].Name)
	assert.Len(t, schema.Tables[0].Columns, 2)
	// Same table name under a different schema stays a separate table.
	assert.Equal(t, "public", schema.Tables[1].Schema)
	assert.Equal(t, "sales", schema.Tables[2].Schema)

	require.Len(t, schema.Functions, 2)
	assert.Equal(t, []string{"since date", "until date"}, schema.Functions[0].Arguments)
	assert.Equal(t, "numeric", schema.Functions[0].ReturnType)
	assert.Empty(t, schema.Functions[1].Arguments)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_LoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").WillReturnError(assert.AnError)

	p := &PostgresProvider{db: db, logger: discardLogger()}
	_, err = p.Load(context.Background())
	assert.Error(t, err)
}

func TestPostgresProvider_CloseWithoutConnect(t *testing.T) {
	p := &PostgresProvider{}
	assert.NoError(t, p.Close())
}
