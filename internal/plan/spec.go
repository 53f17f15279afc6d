package plan

import (
	"github.com/google/uuid"

	"github.com/leengari/idxscan/internal/domain/schema"
	"github.com/leengari/idxscan/internal/predicate"
	"github.com/leengari/idxscan/internal/storage/index"
)

// ScanSpec is the fully resolved plan of a single-table query. The planner
// builds one per query and the executor consumes it once.
type ScanSpec struct {
	ID        uuid.UUID
	Table     *schema.Table
	Index     *schema.Index
	Direction schema.Direction
	// Forced is set when an index hint pinned Index
	Forced bool

	// Span bounds the index scan; KeyTerms are the predicate terms it encodes
	Span     index.Span
	KeyTerms predicate.Predicate
	// Residual is evaluated against every row the span yields
	Residual *predicate.Filter
	// Empty is set when the predicate is contradictory; nothing is scanned
	Empty bool

	// Covering is set when every referenced column is readable from the
	// index entry, so no row fetch is needed
	Covering bool

	// Projection lists output column ordinals; Columns their names
	Projection []int
	Columns    []string
}

// NeedsFetch reports whether each index entry must be joined back to its row
func (s *ScanSpec) NeedsFetch() bool {
	return !s.Index.Primary && !s.Covering
}
