// Package index implements the ordered key structures behind every table
// index: one B-tree per index, scanned in either direction over key ranges.
package index

import (
	"fmt"

	"github.com/leengari/idxscan/internal/domain/data"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// DefaultBatchSize is the number of entries an iterator pulls from the tree
// at a time
const DefaultBatchSize = 64

// Entry is one index entry. Key holds the index key columns; PK is the
// primary-key back-reference. Row is set only for primary index entries.
type Entry struct {
	Key data.Key
	PK  data.Key
	Row data.Row
}

// Bound is one end of a key range over a key prefix. A bound with an empty
// key is unbounded.
type Bound struct {
	Key       data.Key
	Inclusive bool
}

// Unbounded reports whether the bound places no limit on the scan
func (b Bound) Unbounded() bool {
	return len(b.Key) == 0
}

func (b Bound) String() string {
	if b.Unbounded() {
		return "*"
	}
	if b.Inclusive {
		return fmt.Sprintf("%v", []int64(b.Key))
	}
	return fmt.Sprintf("%v(excl)", []int64(b.Key))
}

// Span is a key range over an index. The zero Span covers the whole index.
type Span struct {
	Start Bound
	End   Bound
}

// FullSpan reports whether the span covers the whole index
func (s Span) FullSpan() bool {
	return s.Start.Unbounded() && s.End.Unbounded()
}

func (s Span) String() string {
	if s.FullSpan() {
		return "FULL SCAN"
	}
	return fmt.Sprintf("%s - %s", s.Start, s.End)
}

// Iterator yields index entries in key order (or its reverse). Callers must
// Close it, including when they stop early.
type Iterator interface {
	Next() (Entry, bool)
	Close()
}

// Index is an ordered range iterator over key -> row reference.
// Primary and secondary indexes implement it the same way, so callers never
// special-case the index kind.
type Index interface {
	Def() *schema.Index
	Len() int
	Scan(span Span, dir schema.Direction) Iterator
}
