package planner

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
	"github.com/leengari/idxscan/internal/hint"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/predicate"
)

// Query is a single-table SELECT handed over by the front-end
type Query struct {
	// From is the raw table reference including any index hint,
	// e.g. abcd@{FORCE_INDEX=cd,DESC}
	From string
	// Columns to return; empty or ["*"] returns every column
	Columns []string
	Where   predicate.Predicate
}

// TableSource looks up table definitions
type TableSource interface {
	Table(name string) (*schema.Table, error)
}

// Planner turns queries into scan specs
type Planner struct {
	refs   *hint.Cache
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a planner. refs may be nil to parse every reference afresh.
func New(refs *hint.Cache, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		refs:   refs,
		logger: logger,
		tracer: otel.Tracer("github.com/leengari/idxscan/internal/planner"),
	}
}

// ParseRef parses a raw table reference
func (p *Planner) ParseRef(raw string) (hint.TableRef, error) {
	return p.refs.Parse(raw)
}

// Plan parses the query's table reference, looks the table up and plans
// the scan
func (p *Planner) Plan(ctx context.Context, tables TableSource, q Query) (*plan.ScanSpec, error) {
	ref, err := p.ParseRef(q.From)
	if err != nil {
		return nil, err
	}
	table, err := tables.Table(ref.Table)
	if err != nil {
		return nil, err
	}
	return p.PlanTable(ctx, table, ref, q)
}

// PlanTable plans q against an already resolved table definition. Hint
// resolution happens first, so a hint naming a missing index fails before
// anything else is considered.
func (p *Planner) PlanTable(ctx context.Context, table *schema.Table, ref hint.TableRef, q Query) (*plan.ScanSpec, error) {
	_, span := p.tracer.Start(ctx, "planner.plan", trace.WithAttributes(
		attribute.String("table", table.Name),
		attribute.String("hint", ref.Hint.String()),
	))
	defer span.End()

	spec, err := p.plan(table, ref, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("index", spec.Index.Name),
		attribute.Bool("forced", spec.Forced),
		attribute.Bool("covering", spec.Covering),
	)
	p.logger.Debug("scan planned",
		slog.String("query_id", spec.ID.String()),
		slog.String("table", table.Name),
		slog.String("index", spec.Index.Name),
		slog.String("direction", spec.Direction.String()),
		slog.Bool("forced", spec.Forced),
		slog.Bool("covering", spec.Covering),
		slog.String("span", spec.Span.String()),
		slog.Int("residual_terms", spec.Residual.Len()))
	return spec, nil
}

func (p *Planner) plan(table *schema.Table, ref hint.TableRef, q Query) (*plan.ScanSpec, error) {
	// 1. Resolve the hint before anything touches the data
	res, err := hint.Resolve(table, ref.Hint)
	if err != nil {
		return nil, err
	}

	// 2. Projection
	proj, names, err := resolveProjection(table, q.Columns)
	if err != nil {
		return nil, err
	}

	// 3. Every predicate column must exist; terms use the declared names
	where, err := canonical(table, q.Where)
	if err != nil {
		return nil, err
	}
	intervals := predicate.Intervals(where)

	// 4. Index choice
	spec := &plan.ScanSpec{
		ID:         uuid.New(),
		Table:      table,
		Projection: proj,
		Columns:    names,
	}
	if res.Forced() {
		spec.Index = res.Index
		spec.Direction = res.Direction
		spec.Forced = true
	} else {
		spec.Index = selectIndex(table, intervals)
		spec.Direction = schema.Ascending
	}

	// 5. Split the predicate into key range and residual
	kr := buildKeyRange(table, spec.Index, intervals)
	spec.Span = kr.span
	var residual predicate.Predicate
	for _, c := range where {
		if kr.consumed[c.Column] && c.Op.Narrows() {
			spec.KeyTerms = append(spec.KeyTerms, c)
		} else {
			residual = append(residual, c)
		}
	}
	spec.Residual, err = predicate.Bind(table, residual)
	if err != nil {
		return nil, err
	}

	for _, iv := range intervals {
		if iv.Empty() {
			spec.Empty = true
			break
		}
	}

	// 6. Covering-ness over every referenced column
	spec.Covering = covers(spec.Index, proj, table, where)
	return spec, nil
}

func canonical(table *schema.Table, where predicate.Predicate) (predicate.Predicate, error) {
	out := make(predicate.Predicate, len(where))
	for i, c := range where {
		ord := table.ColumnOrdinal(c.Column)
		if ord < 0 {
			return nil, &dberrors.ColumnNotFoundError{TableName: table.Name, ColumnName: c.Column}
		}
		c.Column = table.Columns[ord].Name
		out[i] = c
	}
	return out, nil
}

func resolveProjection(table *schema.Table, columns []string) ([]int, []string, error) {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		ords := make([]int, len(table.Columns))
		for i := range ords {
			ords[i] = i
		}
		return ords, table.ColumnNames(), nil
	}

	ords := make([]int, len(columns))
	names := make([]string, len(columns))
	for i, name := range columns {
		ord := table.ColumnOrdinal(name)
		if ord < 0 {
			return nil, nil, &dberrors.ColumnNotFoundError{TableName: table.Name, ColumnName: name}
		}
		ords[i] = ord
		names[i] = table.Columns[ord].Name
	}
	return ords, names, nil
}

func covers(idx *schema.Index, proj []int, table *schema.Table, where predicate.Predicate) bool {
	for _, ord := range proj {
		if !idx.Stores(ord) {
			return false
		}
	}
	for _, c := range where {
		if !idx.Stores(table.ColumnOrdinal(c.Column)) {
			return false
		}
	}
	return true
}
