package data

// Row is a single table row. Its arity equals the table's column count and
// position i holds the value of column i.
type Row []int64

// Copy creates a copy of the row to prevent mutation
func (r Row) Copy() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	copy(c, r)
	return c
}

// Project returns the values at the given column ordinals
func (r Row) Project(ordinals []int) Row {
	out := make(Row, len(ordinals))
	for i, ord := range ordinals {
		out[i] = r[ord]
	}
	return out
}

// Key extracts the values at the given ordinals as an index key
func (r Row) Key(ordinals []int) Key {
	return Key(r.Project(ordinals))
}
