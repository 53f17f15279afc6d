package executor

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leengari/idxscan/internal/domain/data"
	"github.com/leengari/idxscan/internal/metrics"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/storage/index"
)

var tracer = otel.Tracer("github.com/leengari/idxscan/internal/executor")

// Option configures a cursor
type Option func(*Cursor)

// OnClose registers fn to run once when the cursor closes
func OnClose(fn func()) Option {
	return func(c *Cursor) {
		c.onClose = append(c.onClose, fn)
	}
}

// Cursor streams the rows of one scan. It must be closed, including when
// the caller stops reading early. A Cursor is not safe for concurrent use.
type Cursor struct {
	ctx  context.Context
	src  Source
	spec *plan.ScanSpec
	it   index.Iterator
	span trace.Span

	stats   Stats
	err     error
	onClose []func()
	once    sync.Once
}

// Open starts the scan described by spec. An empty spec opens no iterator
// and yields nothing.
func Open(ctx context.Context, src Source, spec *plan.ScanSpec, opts ...Option) (*Cursor, error) {
	ctx, span := tracer.Start(ctx, "executor.run", trace.WithAttributes(
		attribute.String("table", spec.Table.Name),
		attribute.String("index", spec.Index.Name),
		attribute.String("direction", spec.Direction.String()),
		attribute.Bool("covering", spec.Covering),
	))

	c := &Cursor{ctx: ctx, src: src, spec: spec, span: span}
	for _, opt := range opts {
		opt(c)
	}

	if spec.Empty {
		return c, nil
	}

	idx, err := src.Index(spec.Index.Name)
	if err != nil {
		c.fail(err)
		c.Close()
		return nil, err
	}
	c.it = idx.Scan(spec.Span, spec.Direction)
	metrics.ScanStarted(spec.Table.Name, spec.Index.Name, spec.Direction.String())
	return c, nil
}

// Next returns the next matching row, projected to the output columns.
// ok is false once the scan is exhausted or the cursor is closed.
func (c *Cursor) Next() (data.Row, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	for c.it != nil {
		if err := c.ctx.Err(); err != nil {
			c.fail(err)
			return nil, false, err
		}

		e, ok := c.it.Next()
		if !ok {
			c.release()
			return nil, false, nil
		}
		c.stats.KeysScanned++

		row, err := c.materialize(e)
		if err != nil {
			c.fail(err)
			return nil, false, err
		}
		if !c.spec.Residual.Eval(row) {
			continue
		}
		c.stats.RowsReturned++
		return row.Project(c.spec.Projection), true, nil
	}
	return nil, false, nil
}

// materialize turns an index entry into a full-arity row. Covering entries
// fill only the columns the index stores; the planner guarantees no other
// column is read.
func (c *Cursor) materialize(e index.Entry) (data.Row, error) {
	spec := c.spec
	switch {
	case spec.Index.Primary:
		return e.Row, nil
	case spec.NeedsFetch():
		row, ok := c.src.Fetch(e.PK)
		if !ok {
			return nil, fmt.Errorf("index %s references missing row %v", spec.Index.Name, []int64(e.PK))
		}
		c.stats.RowsFetched++
		return row, nil
	default:
		row := make(data.Row, len(spec.Table.Columns))
		for pos, ord := range spec.Index.Columns {
			row[ord] = e.Key[pos]
		}
		for pos, ord := range spec.Table.PrimaryKey {
			row[ord] = e.PK[pos]
		}
		return row, nil
	}
}

// Stats returns the work done so far
func (c *Cursor) Stats() Stats {
	return c.stats
}

// Close releases the iterator and runs the OnClose callbacks. It is safe
// to call more than once.
func (c *Cursor) Close() {
	c.once.Do(func() {
		c.release()
		if !c.spec.Empty {
			metrics.ScanFinished(c.spec.Table.Name, c.spec.Index.Name, c.stats.KeysScanned, c.stats.RowsFetched)
		}
		c.span.SetAttributes(
			attribute.Int("keys_scanned", c.stats.KeysScanned),
			attribute.Int("rows_fetched", c.stats.RowsFetched),
			attribute.Int("rows_returned", c.stats.RowsReturned),
		)
		c.span.End()
		for _, fn := range c.onClose {
			fn()
		}
	})
}

func (c *Cursor) release() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, err.Error())
	c.release()
}
