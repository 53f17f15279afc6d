package schema

import (
	"fmt"
	"strings"

	dberrors "github.com/leengari/idxscan/internal/domain/errors"
)

// PrimaryIndexName is the name every table's implicit primary index carries
const PrimaryIndexName = "primary"

// Index describes an ordered index over a table.
// Columns holds table column ordinals in key order.
type Index struct {
	Name    string
	Table   string
	Columns []int
	Unique  bool
	Primary bool

	// stored is the set of column ordinals readable from an index entry
	// without fetching the row: key columns plus the primary-key suffix.
	stored map[int]bool
}

// Stores reports whether the value of column ord is available from an
// index entry alone
func (i *Index) Stores(ord int) bool {
	if i.Primary {
		return true
	}
	return i.stored[ord]
}

// KeyPosition returns the position of column ord in the index key, or -1
func (i *Index) KeyPosition(ord int) int {
	for pos, c := range i.Columns {
		if c == ord {
			return pos
		}
	}
	return -1
}

// Table is the catalog definition of a table. It is immutable once
// registered in the catalog.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []int
	indexes    []*Index // primary first, then secondaries in creation order
}

// NewTable validates the column list and primary key and builds the table
// definition together with its implicit primary index
func NewTable(name string, columns []Column, primaryKey []string) (*Table, error) {
	if name == "" {
		return nil, &dberrors.SchemaError{Reason: "table name must not be empty"}
	}
	if len(columns) == 0 {
		return nil, &dberrors.SchemaError{Table: name, Reason: "table must have at least one column"}
	}

	t := &Table{Name: name, Columns: make([]Column, len(columns))}
	seen := make(map[string]bool, len(columns))
	for i, col := range columns {
		folded := strings.ToLower(col.Name)
		if seen[folded] {
			return nil, &dberrors.SchemaError{Table: name, Object: col.Name, Reason: "duplicate column name"}
		}
		seen[folded] = true
		col.Type = ColumnType(strings.ToUpper(string(col.Type)))
		if col.Type == "" {
			col.Type = ColumnTypeInt
		}
		if col.Type != ColumnTypeInt {
			return nil, &dberrors.SchemaError{Table: name, Object: col.Name, Reason: fmt.Sprintf("unsupported column type %s", col.Type)}
		}
		t.Columns[i] = col
	}

	if len(primaryKey) == 0 {
		return nil, &dberrors.SchemaError{Table: name, Reason: "primary key required"}
	}
	pk, err := t.resolveColumns(PrimaryIndexName, primaryKey)
	if err != nil {
		return nil, err
	}
	t.PrimaryKey = pk
	t.indexes = []*Index{{
		Name:    PrimaryIndexName,
		Table:   name,
		Columns: pk,
		Unique:  true,
		Primary: true,
	}}
	return t, nil
}

// AddIndex validates and appends a secondary index definition.
// Callers must hold whatever lock protects the table.
func (t *Table) AddIndex(name string, columns []string, unique bool) (*Index, error) {
	if name == "" {
		return nil, &dberrors.SchemaError{Table: t.Name, Reason: "index name must not be empty"}
	}
	if t.Index(name) != nil {
		return nil, dberrors.NewDuplicateIndex(t.Name, name)
	}
	if len(columns) == 0 {
		return nil, &dberrors.SchemaError{Table: t.Name, Object: name, Reason: "index must have at least one key column"}
	}

	ords, err := t.resolveColumns(name, columns)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		Name:    name,
		Table:   t.Name,
		Columns: ords,
		Unique:  unique,
		stored:  make(map[int]bool, len(ords)+len(t.PrimaryKey)),
	}
	for _, ord := range ords {
		idx.stored[ord] = true
	}
	for _, ord := range t.PrimaryKey {
		idx.stored[ord] = true
	}

	t.indexes = append(t.indexes, idx)
	return idx, nil
}

// Clone returns a copy of the table whose index list can be extended
// without affecting readers of t
func (t *Table) Clone() *Table {
	c := *t
	c.indexes = append([]*Index(nil), t.indexes...)
	return &c
}

// ColumnOrdinal returns the position of the named column, or -1
func (t *Table) ColumnOrdinal(name string) int {
	for i, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Index returns the named index or nil
func (t *Table) Index(name string) *Index {
	for _, idx := range t.indexes {
		if strings.EqualFold(idx.Name, name) {
			return idx
		}
	}
	return nil
}

// PrimaryIndex returns the table's implicit primary index
func (t *Table) PrimaryIndex() *Index {
	return t.indexes[0]
}

// Indexes returns all indexes, primary first
func (t *Table) Indexes() []*Index {
	return t.indexes
}

// SecondaryIndexes returns the declared secondary indexes
func (t *Table) SecondaryIndexes() []*Index {
	return t.indexes[1:]
}

// IndexWidth is the number of columns an index entry carries.
// The primary index carries the whole row.
func (t *Table) IndexWidth(idx *Index) int {
	if idx.Primary {
		return len(t.Columns)
	}
	return len(idx.Columns)
}

func (t *Table) resolveColumns(index string, names []string) ([]int, error) {
	ords := make([]int, 0, len(names))
	used := make(map[int]bool, len(names))
	for _, name := range names {
		ord := t.ColumnOrdinal(name)
		if ord < 0 {
			return nil, dberrors.NewUnknownKeyColumn(t.Name, index, name)
		}
		if used[ord] {
			return nil, &dberrors.SchemaError{Table: t.Name, Object: index, Reason: fmt.Sprintf("column %q appears more than once in the key", name)}
		}
		used[ord] = true
		ords = append(ords, ord)
	}
	return ords, nil
}
