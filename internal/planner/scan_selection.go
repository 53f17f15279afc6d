package planner

import (
	"github.com/leengari/idxscan/internal/domain/data"
	"github.com/leengari/idxscan/internal/domain/schema"
	"github.com/leengari/idxscan/internal/predicate"
	"github.com/leengari/idxscan/internal/storage/index"
)

// scoreIndex rates how much of an index's key the predicate constrains.
// Each leading equality column is worth two and a range column that ends
// the prefix is worth one.
func scoreIndex(table *schema.Table, idx *schema.Index, intervals map[string]predicate.Interval) int {
	score := 0
	for _, ord := range idx.Columns {
		iv, ok := intervals[table.Columns[ord].Name]
		if !ok || !iv.Constrained() {
			break
		}
		if !iv.IsPoint() {
			score++
			break
		}
		score += 2
	}
	return score
}

// selectIndex picks the index with the best score, breaking ties by the
// narrowest index and then by declaration order (primary first). When no
// index is constrained the primary index is scanned in full.
func selectIndex(table *schema.Table, intervals map[string]predicate.Interval) *schema.Index {
	best := table.PrimaryIndex()
	bestScore := scoreIndex(table, best, intervals)
	bestWidth := table.IndexWidth(best)

	for _, idx := range table.SecondaryIndexes() {
		score := scoreIndex(table, idx, intervals)
		if score == 0 {
			continue
		}
		width := table.IndexWidth(idx)
		if score > bestScore || (score == bestScore && width < bestWidth) {
			best, bestScore, bestWidth = idx, score, width
		}
	}
	return best
}

type keyRange struct {
	span     index.Span
	consumed map[string]bool
}

// buildKeyRange encodes the leading constrained key columns of idx into a
// span. Equality columns extend the key prefix; the first range column
// bounds it and ends the encoding.
func buildKeyRange(table *schema.Table, idx *schema.Index, intervals map[string]predicate.Interval) keyRange {
	kr := keyRange{consumed: make(map[string]bool)}
	var prefix data.Key

	for _, ord := range idx.Columns {
		name := table.Columns[ord].Name
		iv, ok := intervals[name]
		if !ok || !iv.Constrained() {
			break
		}
		kr.consumed[name] = true

		if iv.IsPoint() {
			prefix = extend(prefix, iv.Lo)
			continue
		}

		kr.span.Start = index.Bound{Key: prefix, Inclusive: true}
		if iv.HasLo {
			kr.span.Start = index.Bound{Key: extend(prefix, iv.Lo), Inclusive: iv.LoIncl}
		}
		kr.span.End = index.Bound{Key: prefix, Inclusive: true}
		if iv.HasHi {
			kr.span.End = index.Bound{Key: extend(prefix, iv.Hi), Inclusive: iv.HiIncl}
		}
		return kr
	}

	if len(prefix) > 0 {
		kr.span = index.Span{
			Start: index.Bound{Key: prefix, Inclusive: true},
			End:   index.Bound{Key: prefix, Inclusive: true},
		}
	}
	return kr
}

func extend(prefix data.Key, v int64) data.Key {
	k := make(data.Key, len(prefix), len(prefix)+1)
	copy(k, prefix)
	return append(k, v)
}
