// Package executor runs scan specs against an index snapshot.
package executor

import (
	"context"

	"github.com/leengari/idxscan/internal/domain/data"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/storage/index"
)

// Source is the read side of an index store. *index.Snapshot implements it.
type Source interface {
	Index(name string) (index.Index, error)
	Fetch(pk data.Key) (data.Row, bool)
}

// Stats describes the work a scan did
type Stats struct {
	// KeysScanned counts index entries visited inside the span
	KeysScanned int
	// RowsFetched counts rows looked up through the primary-key back-reference
	RowsFetched int
	// RowsReturned counts rows that passed the residual predicate
	RowsReturned int
}

// Result is a fully drained scan
type Result struct {
	Columns []string
	Rows    []data.Row
	Stats   Stats
}

// Run executes spec to completion and collects every row
func Run(ctx context.Context, src Source, spec *plan.ScanSpec) (*Result, error) {
	cur, err := Open(ctx, src, spec)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	res := &Result{Columns: spec.Columns}
	for {
		row, ok, err := cur.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		res.Rows = append(res.Rows, row)
	}
	res.Stats = cur.Stats()
	return res, nil
}
