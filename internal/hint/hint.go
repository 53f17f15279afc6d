// Package hint parses table references carrying index hints and resolves
// the hinted index against a table definition.
//
// Accepted forms:
//
//	table
//	table@index
//	table@{FORCE_INDEX=index}
//	table@{FORCE_INDEX=index,ASC}
//	table@{FORCE_INDEX=index,DESC}
package hint

import (
	"fmt"

	"github.com/leengari/idxscan/internal/domain/schema"
)

// Order is the scan direction requested by a hint, if any
type Order int

const (
	OrderDefault Order = iota
	OrderAsc
	OrderDesc
)

func (o Order) String() string {
	switch o {
	case OrderAsc:
		return "ASC"
	case OrderDesc:
		return "DESC"
	default:
		return ""
	}
}

// Direction maps the requested order onto a scan direction
func (o Order) Direction() schema.Direction {
	if o == OrderDesc {
		return schema.Descending
	}
	return schema.Ascending
}

// Hint is one of NoHint, ByName or Detailed
type Hint interface {
	fmt.Stringer
	hint()
}

// NoHint lets the planner choose the index
type NoHint struct{}

// ByName is the bare table@index form
type ByName struct {
	Index string
}

// Detailed is the table@{FORCE_INDEX=index[,ASC|DESC]} form
type Detailed struct {
	Index string
	Order Order
}

func (NoHint) hint()   {}
func (ByName) hint()   {}
func (Detailed) hint() {}

func (NoHint) String() string { return "" }

func (h ByName) String() string { return "@" + h.Index }

func (h Detailed) String() string {
	if h.Order == OrderDefault {
		return fmt.Sprintf("@{FORCE_INDEX=%s}", h.Index)
	}
	return fmt.Sprintf("@{FORCE_INDEX=%s,%s}", h.Index, h.Order)
}

// TableRef is a parsed table reference
type TableRef struct {
	Table string
	Hint  Hint
}

func (r TableRef) String() string {
	return r.Table + r.Hint.String()
}
