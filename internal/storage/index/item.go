package index

import "github.com/leengari/idxscan/internal/domain/data"

// item is what the B-tree stores. For the primary index key is the primary
// key and row is the row; for a secondary index key is the index columns
// followed by the primary key, which keeps entries unique.
type item struct {
	key  data.Key
	pk   data.Key
	row  data.Row
	cols int // number of leading key values that are index columns

	// upper marks a search pivot that sorts after every key sharing its
	// prefix. Stored items never set it.
	upper bool
}

func compareItems(a, b item) int {
	n := len(a.key)
	if len(b.key) < n {
		n = len(b.key)
	}
	if c := a.key[:n].Compare(b.key[:n]); c != 0 {
		return c
	}

	switch {
	case len(a.key) == len(b.key):
		switch {
		case a.upper == b.upper:
			return 0
		case a.upper:
			return 1
		default:
			return -1
		}
	case len(a.key) < len(b.key):
		if a.upper {
			return 1
		}
		return -1
	default:
		if b.upper {
			return -1
		}
		return 1
	}
}

func lessItems(a, b item) bool {
	return compareItems(a, b) < 0
}

// lowerPivot returns the pivot sorting immediately before the first key
// admitted by b
func lowerPivot(b Bound) item {
	return item{key: b.Key, upper: !b.Inclusive}
}

// upperPivot returns the pivot sorting immediately after the last key
// admitted by b
func upperPivot(b Bound) item {
	return item{key: b.Key, upper: b.Inclusive}
}

func (it item) entry() Entry {
	return Entry{
		Key: it.key[:it.cols],
		PK:  it.pk,
		Row: it.row,
	}
}
