package errors

import (
	"fmt"
	"strings"
)

// IndexNotFoundError is returned when an index hint names an index that the
// table does not define. Its text is surfaced to clients verbatim.
type IndexNotFoundError struct {
	Table string
	Name  string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index %q not found", e.Name)
}

// SchemaError represents a violation of catalog rules at definition time
// (duplicate index name, unknown key column, dropping a table that is in use).
type SchemaError struct {
	Table  string // table name
	Object string // index or column involved (may be empty)
	Reason string // human-readable explanation
}

func (e *SchemaError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("schema violation on table %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("schema violation on %s.%s: %s", e.Table, e.Object, e.Reason)
}

// TableNotFoundError is returned when a table reference names no table
type TableNotFoundError struct {
	Name string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Name)
}

// ColumnNotFoundError is returned when a projection or predicate references
// a column the table does not have
type ColumnNotFoundError struct {
	TableName  string
	ColumnName string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q does not exist in table %s", e.ColumnName, e.TableName)
}

// HintSyntaxError reports a malformed table reference or index hint.
// Pos is the 1-based byte column where the problem was detected.
type HintSyntaxError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *HintSyntaxError) Error() string {
	return fmt.Sprintf("invalid table reference %q at col %d: %s", e.Input, e.Pos, e.Reason)
}

// ConstraintError represents a violation of a data constraint on insert
// (duplicate primary key, unique index violation, wrong arity)
type ConstraintError struct {
	Table      string
	Index      string
	Key        []int64
	Constraint string // "primary_key", "unique", "arity"
	Reason     string
}

func (e *ConstraintError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("constraint violation in %s", e.Table))

	if e.Index != "" {
		parts = append(parts, fmt.Sprintf("index %s", e.Index))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}

	if e.Key != nil {
		parts = append(parts, fmt.Sprintf("key=%v", e.Key))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewDuplicateIndex(table, index string) *SchemaError {
	return &SchemaError{
		Table:  table,
		Object: index,
		Reason: "an index with the same name is already defined on the table",
	}
}

func NewUnknownKeyColumn(table, index, column string) *SchemaError {
	return &SchemaError{
		Table:  table,
		Object: index,
		Reason: fmt.Sprintf("key column %q is not a column of the table", column),
	}
}

func NewUniqueViolation(table, index string, key []int64) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Index:      index,
		Key:        key,
		Constraint: "unique",
		Reason:     "duplicate key value",
	}
}

func NewPrimaryKeyViolation(table string, key []int64) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Index:      "primary",
		Key:        key,
		Constraint: "primary_key",
		Reason:     "duplicate primary key",
	}
}
