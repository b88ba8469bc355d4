package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

func init() {
	Register("yaml", func(logger *slog.Logger) Provider {
		return &YAMLProvider{logger: logger}
	})
}

// YAMLProvider reads a schema snapshot from a YAML file, for working
// offline or pinning a fixed schema in tests and editor setups.
type YAMLProvider struct {
	path   string
	logger *slog.Logger
}

func (p *YAMLProvider) Name() string { return "yaml" }

// Connect records the file path and verifies the file is readable.
func (p *YAMLProvider) Connect(ctx context.Context, cfg Config) error {
	if cfg.Path == "" {
		return fmt.Errorf("yaml catalog: path not specified")
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return fmt.Errorf("yaml catalog: %w", err)
	}
	p.path = cfg.Path
	return nil
}

func (p *YAMLProvider) Close() error { return nil }

// schemaFile mirrors the snapshot types with yaml tags.
type schemaFile struct {
	Tables []struct {
		Schema  string `yaml:"schema"`
		Name    string `yaml:"name"`
		Columns []struct {
			Name string `yaml:"name"`
			Type string `yaml:"type"`
		} `yaml:"columns"`
	} `yaml:"tables"`
	Functions []struct {
		Schema     string   `yaml:"schema"`
		Name       string   `yaml:"name"`
		Arguments  []string `yaml:"arguments"`
		ReturnType string   `yaml:"return_type"`
	} `yaml:"functions"`
}

// Load re-reads the file on every call, so an external schema edit shows up
// on the next refresh without reconnecting.
func (p *YAMLProvider) Load(ctx context.Context) (*complete.Schema, error) {
	if p.path == "" {
		return nil, fmt.Errorf("yaml catalog: not connected")
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema document into a snapshot.
func ParseSchema(data []byte) (*complete.Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}

	schema := &complete.Schema{}
	for _, t := range file.Tables {
		table := complete.Table{Schema: t.Schema, Name: t.Name}
		for _, c := range t.Columns {
			table.Columns = append(table.Columns, complete.Column{Name: c.Name, Type: c.Type})
		}
		schema.Tables = append(schema.Tables, table)
	}
	for _, f := range file.Functions {
		schema.Functions = append(schema.Functions, complete.Function{
			Schema:     f.Schema,
			Name:       f.Name,
			Arguments:  f.Arguments,
			ReturnType: f.ReturnType,
		})
	}
	return schema, nil
}
