package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func TestNew_RegisteredProviders(t *testing.T) {
	tests := []struct {
		name string
		typ  string
	}{
		{name: "duckdb", typ: "duckdb"},
		{name: "postgres", typ: "postgres"},
		{name: "yaml", typ: "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(Config{Type: tt.typ}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, p.Name())
		})
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "snowflake"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownProviderError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "snowflake", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "duckdb")
	assert.Contains(t, err.Error(), "snowflake")
}

func TestNew_EmptyType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestNew_NilLoggerDiscards(t *testing.T) {
	p, err := New(Config{Type: "yaml"}, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestRegister_CustomProvider(t *testing.T) {
	Register("test-custom", func(logger *slog.Logger) Provider {
		return &fakeProvider{name: "test-custom"}
	})

	p, err := New(Config{Type: "test-custom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "test-custom", p.Name())
	assert.Contains(t, ListProviders(), "test-custom")
}

func TestListProviders_Sorted(t *testing.T) {
	names := ListProviders()
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeProvider serves the registry and LoadAll tests.
type fakeProvider struct {
	name   string
	schema *complete.Schema
	err    error
}

func (p *fakeProvider) Connect(ctx context.Context, cfg Config) error { return nil }
func (p *fakeProvider) Close() error                                  { return nil }
func (p *fakeProvider) Name() string                                  { return p.name }

func (p *fakeProvider) Load(ctx context.Context) (*complete.Schema, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.schema, nil
}

func TestLoadAll_MergesInOrder(t *testing.T) {
	providers := []Provider{
		&fakeProvider{name: "a", schema: &complete.Schema{
			Tables:    []complete.Table{{Name: "users"}},
			Functions: []complete.Function{{Name: "f"}},
		}},
		&fakeProvider{name: "b", schema: &complete.Schema{
			Tables: []complete.Table{{Name: "orders"}, {Name: "events"}},
		}},
	}

	merged, err := LoadAll(context.Background(), providers)
	require.NoError(t, err)
	require.Len(t, merged.Tables, 3)
	assert.Equal(t, "users", merged.Tables[0].Name)
	assert.Equal(t, "orders", merged.Tables[1].Name)
	assert.Equal(t, "events", merged.Tables[2].Name)
	assert.Len(t, merged.Functions, 1)
}

func TestLoadAll_OneFailureFailsAll(t *testing.T) {
	boom := errors.New("introspection failed")
	providers := []Provider{
		&fakeProvider{name: "ok", schema: &complete.Schema{}},
		&fakeProvider{name: "bad", err: boom},
	}

	_, err := LoadAll(context.Background(), providers)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLoadAll_Empty(t *testing.T) {
	merged, err := LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, merged.Tables)
	assert.Empty(t, merged.Functions)
}
