package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchemaYAML = `
tables:
  - schema: public
    name: users
    columns:
      - name: id
        type: integer
      - name: email
        type: text
  - name: orders
    columns:
      - name: id
        type: integer
functions:
  - name: revenue
    arguments: [since date, until date]
    return_type: numeric
`

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema([]byte(sampleSchemaYAML))
	require.NoError(t, err)

	require.Len(t, schema.Tables, 2)
	assert.Equal(t, "public", schema.Tables[0].Schema)
	assert.Equal(t, "users", schema.Tables[0].Name)
	require.Len(t, schema.Tables[0].Columns, 2)
	assert.Equal(t, "email", schema.Tables[0].Columns[1].Name)
	assert.Equal(t, "text", schema.Tables[0].Columns[1].Type)
	assert.Empty(t, schema.Tables[1].Schema)

	require.Len(t, schema.Functions, 1)
	assert.Equal(t, "revenue", schema.Functions[0].Name)
	assert.Equal(t, []string{"since date", "until date"}, schema.Functions[0].Arguments)
	assert.Equal(t, "numeric", schema.Functions[0].ReturnType)
}

func TestParseSchema_Invalid(t *testing.T) {
	_, err := ParseSchema([]byte("tables: [unclosed"))
	assert.Error(t, err)
}

func TestParseSchema_Empty(t *testing.T) {
	schema, err := ParseSchema(nil)
	require.NoError(t, err)
	assert.Empty(t, schema.Tables)
	assert.Empty(t, schema.Functions)
}

func TestYAMLProvider_ConnectAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchemaYAML), 0o644))

	p := &YAMLProvider{logger: discardLogger()}
	require.NoError(t, p.Connect(context.Background(), Config{Path: path}))

	schema, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, schema.Tables, 2)
}

func TestYAMLProvider_LoadSeesFileEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchemaYAML), 0o644))

	p := &YAMLProvider{logger: discardLogger()}
	require.NoError(t, p.Connect(context.Background(), Config{Path: path}))

	_, err := p.Load(context.Background())
	require.NoError(t, err)

	edited := `
tables:
  - name: users
  - name: orders
  - name: events
`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	schema, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, schema.Tables, 3)
}

func TestYAMLProvider_ConnectErrors(t *testing.T) {
	p := &YAMLProvider{logger: discardLogger()}

	err := p.Connect(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not specified")

	err = p.Connect(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestYAMLProvider_LoadNotConnected(t *testing.T) {
	p := &YAMLProvider{logger: discardLogger()}
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}
