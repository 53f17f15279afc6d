// Package predicate models WHERE clauses as conjunctions of column
// comparisons against integer constants.
package predicate

import (
	"fmt"
	"strings"

	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// Op is a comparison operator
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opSymbols = map[Op]string{
	OpEq: "=",
	OpNe: "!=",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Comparison is a single `column op value` term
type Comparison struct {
	Column string
	Op     Op
	Value  int64
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %d", c.Column, c.Op, c.Value)
}

// Matches applies the comparison to a column value
func (c Comparison) Matches(v int64) bool {
	switch c.Op {
	case OpEq:
		return v == c.Value
	case OpNe:
		return v != c.Value
	case OpLt:
		return v < c.Value
	case OpLe:
		return v <= c.Value
	case OpGt:
		return v > c.Value
	case OpGe:
		return v >= c.Value
	}
	return false
}

// Predicate is a conjunction of comparisons. The empty predicate is true.
type Predicate []Comparison

// Between expands `col BETWEEN lo AND hi` into its two inclusive terms
func Between(column string, lo, hi int64) Predicate {
	return Predicate{
		{Column: column, Op: OpGe, Value: lo},
		{Column: column, Op: OpLe, Value: hi},
	}
}

// And returns the conjunction of p and terms
func (p Predicate) And(terms ...Comparison) Predicate {
	out := make(Predicate, 0, len(p)+len(terms))
	out = append(out, p...)
	return append(out, terms...)
}

// Columns returns the distinct columns referenced, in first-use order
func (p Predicate) Columns() []string {
	var cols []string
	seen := make(map[string]bool, len(p))
	for _, c := range p {
		if !seen[c.Column] {
			seen[c.Column] = true
			cols = append(cols, c.Column)
		}
	}
	return cols
}

func (p Predicate) String() string {
	if len(p) == 0 {
		return "true"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

type boundTerm struct {
	ord int
	cmp Comparison
}

// Filter is a predicate bound to a table's column ordinals
type Filter struct {
	terms []boundTerm
}

// Bind resolves every column of p against table
func Bind(table *schema.Table, p Predicate) (*Filter, error) {
	f := &Filter{terms: make([]boundTerm, 0, len(p))}
	for _, c := range p {
		ord := table.ColumnOrdinal(c.Column)
		if ord < 0 {
			return nil, &dberrors.ColumnNotFoundError{TableName: table.Name, ColumnName: c.Column}
		}
		f.terms = append(f.terms, boundTerm{ord: ord, cmp: c})
	}
	return f, nil
}

// Eval reports whether row satisfies every term. A nil filter accepts
// every row.
func (f *Filter) Eval(row data.Row) bool {
	if f == nil {
		return true
	}
	for _, t := range f.terms {
		if !t.cmp.Matches(row[t.ord]) {
			return false
		}
	}
	return true
}

// Len returns the number of terms
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

// Ordinals returns the column ordinals the filter reads
func (f *Filter) Ordinals() []int {
	if f == nil {
		return nil
	}
	out := make([]int, len(f.terms))
	for i, t := range f.terms {
		out[i] = t.ord
	}
	return out
}

// Predicate returns the unbound terms
func (f *Filter) Predicate() Predicate {
	if f == nil {
		return nil
	}
	p := make(Predicate, len(f.terms))
	for i, t := range f.terms {
		p[i] = t.cmp
	}
	return p
}
