package index

import (
	"sync/atomic"

	"github.com/google/btree"

	"github.com/leengari/idxscan/internal/domain/schema"
)

const btreeDegree = 32

func newTree() *btree.BTreeG[item] {
	return btree.NewG[item](btreeDegree, lessItems)
}

// treeIndex is an Index over an immutable B-tree snapshot
type treeIndex struct {
	def   *schema.Index
	tree  *btree.BTreeG[item]
	batch int
	open  *atomic.Int64
}

func (t *treeIndex) Def() *schema.Index {
	return t.def
}

func (t *treeIndex) Len() int {
	return t.tree.Len()
}

func (t *treeIndex) Scan(span Span, dir schema.Direction) Iterator {
	it := &treeIterator{
		tree:  t.tree,
		dir:   dir,
		batch: t.batch,
		open:  t.open,
	}
	if !span.Start.Unbounded() {
		p := lowerPivot(span.Start)
		it.lower = &p
	}
	if !span.End.Unbounded() {
		p := upperPivot(span.End)
		it.upper = &p
	}
	if it.open != nil {
		it.open.Add(1)
	}
	return it
}

// treeIterator pulls entries from the tree in batches. The tree callback
// API cannot be suspended, so each batch restarts the traversal just past
// the last entry handed out.
type treeIterator struct {
	tree  *btree.BTreeG[item]
	dir   schema.Direction
	lower *item
	upper *item
	batch int
	open  *atomic.Int64

	buf    []item
	pos    int
	resume *item
	done   bool
	closed bool
}

func (it *treeIterator) Next() (Entry, bool) {
	if it.closed {
		return Entry{}, false
	}
	if it.pos >= len(it.buf) {
		if it.done {
			return Entry{}, false
		}
		it.fill()
		if len(it.buf) == 0 {
			return Entry{}, false
		}
	}
	x := it.buf[it.pos]
	it.pos++
	return x.entry(), true
}

func (it *treeIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.buf = nil
	if it.open != nil {
		it.open.Add(-1)
	}
}

func (it *treeIterator) fill() {
	it.buf = it.buf[:0]
	it.pos = 0

	collect := func(x item) bool {
		if it.resume != nil && compareItems(x, *it.resume) == 0 {
			return true
		}
		if it.dir == schema.Descending {
			// an exclusive end pivot compares equal to a full-length key,
			// which DescendLessOrEqual still visits
			if it.upper != nil && compareItems(x, *it.upper) >= 0 {
				return true
			}
			if it.lower != nil && compareItems(x, *it.lower) < 0 {
				it.done = true
				return false
			}
		} else if it.upper != nil && compareItems(x, *it.upper) >= 0 {
			it.done = true
			return false
		}
		it.buf = append(it.buf, x)
		return len(it.buf) < it.batch
	}

	if it.dir == schema.Descending {
		start := it.upper
		if it.resume != nil {
			start = it.resume
		}
		if start == nil {
			it.tree.Descend(collect)
		} else {
			it.tree.DescendLessOrEqual(*start, collect)
		}
	} else {
		start := it.lower
		if it.resume != nil {
			start = it.resume
		}
		if start == nil {
			it.tree.Ascend(collect)
		} else {
			it.tree.AscendGreaterOrEqual(*start, collect)
		}
	}

	if len(it.buf) < it.batch {
		it.done = true
	}
	if n := len(it.buf); n > 0 {
		last := it.buf[n-1]
		it.resume = &last
	}
}
