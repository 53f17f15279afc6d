package hint

import (
	"fmt"

	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// Resolution is a hint validated against a table. Index is nil when the
// planner is free to choose.
type Resolution struct {
	Index     *schema.Index
	Direction schema.Direction
}

// Forced reports whether the hint pins the index
func (r Resolution) Forced() bool {
	return r.Index != nil
}

// Resolve validates h against table. A hint naming an index the table does
// not define fails with IndexNotFoundError.
func Resolve(table *schema.Table, h Hint) (Resolution, error) {
	switch h := h.(type) {
	case nil, NoHint:
		return Resolution{}, nil
	case ByName:
		idx, err := lookup(table, h.Index)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Index: idx, Direction: schema.Ascending}, nil
	case Detailed:
		idx, err := lookup(table, h.Index)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Index: idx, Direction: h.Order.Direction()}, nil
	default:
		return Resolution{}, fmt.Errorf("unsupported hint type %T", h)
	}
}

func lookup(table *schema.Table, name string) (*schema.Index, error) {
	idx := table.Index(name)
	if idx == nil {
		return nil, &dberrors.IndexNotFoundError{Table: table.Name, Name: name}
	}
	return idx, nil
}
