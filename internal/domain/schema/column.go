package schema

// ColumnType is the semantic type of a column
type ColumnType string

const (
	ColumnTypeInt ColumnType = "INT"
)

// Column describes a single table column
type Column struct {
	Name string
	Type ColumnType
}
