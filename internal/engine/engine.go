// Package engine ties the catalog, index stores, planner and executor
// together behind a single facade.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leengari/idxscan/internal/catalog"
	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
	"github.com/leengari/idxscan/internal/executor"
	"github.com/leengari/idxscan/internal/hint"
	"github.com/leengari/idxscan/internal/metrics"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/planner"
	"github.com/leengari/idxscan/internal/storage/index"
)

// Options configures an Engine
type Options struct {
	// BatchSize is the number of entries a scan pulls from an index at a
	// time; <= 0 selects index.DefaultBatchSize
	BatchSize int
	// HintCacheSize bounds the parsed table reference cache; 0 disables it
	HintCacheSize int
	Logger        *slog.Logger
}

// Engine is the main entry point for the database system
type Engine struct {
	catalog *catalog.Catalog
	planner *planner.Planner
	batch   int
	logger  *slog.Logger
	tracer  trace.Tracer

	mu     sync.RWMutex
	stores map[string]*index.Store

	obsMu     sync.RWMutex
	observers []Observer // Observers for lifecycle events
}

// New creates a new Engine instance
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refs, err := hint.NewCache(opts.HintCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create hint cache: %w", err)
	}
	return &Engine{
		catalog: catalog.New(logger),
		planner: planner.New(refs, logger),
		batch:   opts.BatchSize,
		logger:  logger,
		tracer:  otel.Tracer("github.com/leengari/idxscan/internal/engine"),
		stores:  make(map[string]*index.Store),
	}, nil
}

// Catalog returns the engine's catalog
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CreateTable registers a table and allocates its index store
func (e *Engine) CreateTable(name string, columns []schema.Column, primaryKey []string) (*schema.Table, error) {
	def, err := schema.NewTable(name, columns, primaryKey)
	if err != nil {
		return nil, err
	}
	err = e.catalog.CreateTable(def, func(t *schema.Table) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.stores[t.Name] = index.NewStore(t, e.batch, e.logger)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// CreateIndex adds a secondary index and backfills it from the stored rows
func (e *Engine) CreateIndex(table, name string, columns []string, unique bool) (*schema.Index, error) {
	return e.catalog.CreateIndex(table, name, columns, unique, func(t *schema.Table, idx *schema.Index) error {
		store, err := e.store(t.Name)
		if err != nil {
			return err
		}
		return store.AddIndex(t, idx)
	})
}

// DropTable removes a table and its rows. It fails while a query is reading
// the table.
func (e *Engine) DropTable(name string) error {
	return e.catalog.DropTable(name, func(t *schema.Table) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.stores, t.Name)
		return nil
	})
}

// Insert adds rows to a table in order, stopping at the first failure.
// The store stays registered until the last row is written, so a
// concurrent DropTable either waits for the insert or makes it fail.
func (e *Engine) Insert(table string, rows ...data.Row) error {
	def, err := e.catalog.Table(table)
	if err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	store, ok := e.stores[def.Name]
	if !ok {
		return &dberrors.TableNotFoundError{Name: table}
	}
	for i, row := range rows {
		if err := store.Insert(row); err != nil {
			return fmt.Errorf("insert into %s, row %d: %w", def.Name, i, err)
		}
	}
	return nil
}

// Tables returns the table names in sorted order
func (e *Engine) Tables() []string {
	return e.catalog.Tables()
}

// Query runs q to completion
func (e *Engine) Query(ctx context.Context, q planner.Query) (*executor.Result, error) {
	cur, err := e.Open(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	res := &executor.Result{Columns: cur.Columns()}
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

// Open plans q and returns a cursor over its rows. The table stays pinned
// against schema changes until the cursor is closed.
func (e *Engine) Open(ctx context.Context, q planner.Query) (*Cursor, error) {
	queryID := uuid.New()
	ctx, span := e.tracer.Start(ctx, "engine.query", trace.WithAttributes(
		attribute.String("query_id", queryID.String()),
		attribute.String("from", q.From),
	))
	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return err
	}

	spec, lease, err := e.plan(ctx, queryID, q)
	if err != nil {
		return nil, fail(err)
	}

	store, err := e.store(lease.Table.Name)
	if err != nil {
		lease.Release()
		return nil, fail(err)
	}

	e.notify(Event{Type: EventExecStart, QueryID: queryID.String()})
	cur, err := executor.Open(ctx, store.Snapshot(), spec, executor.OnClose(func() {
		lease.Release()
		span.End()
	}))
	if err != nil {
		// the OnClose callbacks have already released the lease and ended the span
		return nil, err
	}
	return &Cursor{Cursor: cur, engine: e, spec: spec}, nil
}

// Explain plans q without running it
func (e *Engine) Explain(ctx context.Context, q planner.Query) (plan.Node, error) {
	spec, lease, err := e.plan(ctx, uuid.New(), q)
	if err != nil {
		return nil, err
	}
	lease.Release()
	return plan.Explain(spec), nil
}

// plan resolves and plans q under a lease on its table. On success the
// caller owns the lease.
func (e *Engine) plan(ctx context.Context, queryID uuid.UUID, q planner.Query) (*plan.ScanSpec, *catalog.Lease, error) {
	e.notify(Event{Type: EventPlanStart, QueryID: queryID.String(), Data: q.From})

	ref, err := e.planner.ParseRef(q.From)
	if err != nil {
		countHintFailure(err)
		return nil, nil, err
	}
	lease, err := e.catalog.Acquire(ref.Table)
	if err != nil {
		return nil, nil, err
	}
	spec, err := e.planner.PlanTable(ctx, lease.Table, ref, q)
	if err != nil {
		lease.Release()
		countHintFailure(err)
		return nil, nil, err
	}
	spec.ID = queryID

	e.notify(Event{Type: EventPlanEnd, QueryID: queryID.String(), Data: map[string]any{
		"index":     spec.Index.Name,
		"direction": spec.Direction.String(),
		"forced":    spec.Forced,
		"covering":  spec.Covering,
		"span":      spec.Span.String(),
	}})
	return spec, lease, nil
}

func (e *Engine) store(table string) (*index.Store, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.stores[table]
	if !ok {
		return nil, &dberrors.TableNotFoundError{Name: table}
	}
	return s, nil
}

func countHintFailure(err error) {
	var syntaxErr *dberrors.HintSyntaxError
	var notFound *dberrors.IndexNotFoundError
	switch {
	case errors.As(err, &syntaxErr):
		metrics.HintFailed("syntax")
	case errors.As(err, &notFound):
		metrics.HintFailed("not_found")
	}
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}
