// Package loader builds a database from a YAML or JSON fixture.
package loader

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/leengari/idxscan/internal/domain/data"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// Builder receives the definitions and rows of a fixture.
// *engine.Engine implements it.
type Builder interface {
	CreateTable(name string, columns []schema.Column, primaryKey []string) (*schema.Table, error)
	CreateIndex(table, name string, columns []string, unique bool) (*schema.Index, error)
	Insert(table string, rows ...data.Row) error
}

// ReadDatabase parses the fixture at path. The format follows the file
// extension.
func ReadDatabase(path string) (*DatabaseMeta, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read database fixture: %w", err)
	}

	var meta DatabaseMeta
	if err := v.Unmarshal(&meta); err != nil {
		return nil, fmt.Errorf("failed to parse database fixture: %w", err)
	}
	return &meta, nil
}

// LoadDatabase reads the fixture at path and builds it into b
func LoadDatabase(path string, b Builder, logger *slog.Logger) (*DatabaseMeta, error) {
	if logger == nil {
		logger = slog.Default()
	}
	meta, err := ReadDatabase(path)
	if err != nil {
		return nil, err
	}

	rows := 0
	for _, t := range meta.Tables {
		if err := LoadTable(t, b); err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", t.Name, err)
		}
		rows += len(t.Rows)
	}

	logger.Info("Database loaded successfully",
		slog.String("name", meta.Name),
		slog.String("path", path),
		slog.Int("table_count", len(meta.Tables)),
		slog.Int("row_count", rows),
	)
	return meta, nil
}

// LoadTable creates one table, its indexes and its rows. Indexes are
// created before the rows are inserted.
func LoadTable(t TableMeta, b Builder) error {
	cols := make([]schema.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = schema.Column{Name: c.Name, Type: schema.ColumnType(c.Type)}
	}
	if _, err := b.CreateTable(t.Name, cols, t.PrimaryKey); err != nil {
		return err
	}

	for _, idx := range t.Indexes {
		if _, err := b.CreateIndex(t.Name, idx.Name, idx.Columns, idx.Unique); err != nil {
			return err
		}
	}

	rows := make([]data.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = data.Row(r)
	}
	return b.Insert(t.Name, rows...)
}
