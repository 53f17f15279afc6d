package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
	"github.com/leengari/idxscan/internal/metrics"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/planner"
	"github.com/leengari/idxscan/internal/predicate"
)

func abcdEngine(t *testing.T) *Engine {
	t.Helper()
	eng := newEngine(t)
	cols := []schema.Column{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	_, err := eng.CreateTable("abcd", cols, []string{"a"})
	require.NoError(t, err)
	_, err = eng.CreateIndex("abcd", "b", []string{"b"}, false)
	require.NoError(t, err)
	_, err = eng.CreateIndex("abcd", "cd", []string{"c", "d"}, false)
	require.NoError(t, err)
	_, err = eng.CreateIndex("abcd", "bcd", []string{"b", "c", "d"}, true)
	require.NoError(t, err)
	require.NoError(t, eng.Insert("abcd",
		data.Row{10, 11, 12, 13},
		data.Row{20, 21, 22, 23},
		data.Row{30, 31, 32, 33},
		data.Row{40, 41, 42, 43},
	))
	return eng
}

func TestFixtureScenarios(t *testing.T) {
	eng := abcdEngine(t)
	ctx := context.Background()
	want := []data.Row{{20, 21, 22, 23}, {30, 31, 32, 33}}

	for _, from := range []string{"abcd", "abcd@primary", "abcd@b", "abcd@cd", "abcd@bcd"} {
		res, err := eng.Query(ctx, planner.Query{From: from, Columns: []string{"*"}, Where: predicate.Between("a", 20, 30)})
		require.NoError(t, err, from)
		assert.ElementsMatch(t, want, res.Rows, from)
	}

	res, err := eng.Query(ctx, planner.Query{From: "abcd@b", Columns: []string{"b"}, Where: predicate.Between("c", 20, 30)})
	require.NoError(t, err)
	assert.Equal(t, []data.Row{{21}}, res.Rows)
	assert.Equal(t, []string{"b"}, res.Columns)
}

func TestIndexNotFoundScansNothing(t *testing.T) {
	eng := abcdEngine(t)
	notFound := metrics.HintFailuresTotal.WithLabelValues("not_found")
	before := testutil.ToFloat64(notFound)
	scans := metrics.ScansTotal.WithLabelValues("abcd", "primary", "ASC")
	scansBefore := testutil.ToFloat64(scans)

	for _, from := range []string{"abcd@badidx", "abcd@{FORCE_INDEX=badidx}"} {
		_, err := eng.Query(context.Background(), planner.Query{From: from})
		var nf *dberrors.IndexNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.EqualError(t, err, `index "badidx" not found`)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(notFound))
	assert.Equal(t, scansBefore, testutil.ToFloat64(scans))
	assert.Zero(t, eng.Catalog().Leases("abcd"))
}

func TestMalformedHints(t *testing.T) {
	eng := abcdEngine(t)
	for _, from := range []string{"abcd@{FORCE_INDEX}", "abcd@{FORCE_INDEX=b,SIDEWAYS}", "abcd@", "abcd@{INDEX=b}"} {
		_, err := eng.Query(context.Background(), planner.Query{From: from})
		var syntaxErr *dberrors.HintSyntaxError
		assert.ErrorAs(t, err, &syntaxErr, from)
	}
}

func TestDescendingQuery(t *testing.T) {
	eng := abcdEngine(t)

	res, err := eng.Query(context.Background(), planner.Query{From: "abcd@{FORCE_INDEX=primary,DESC}", Columns: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []data.Row{{40}, {30}, {20}, {10}}, res.Rows)

	res, err = eng.Query(context.Background(), planner.Query{From: "abcd@{FORCE_INDEX=bcd,DESC}", Columns: []string{"b"}, Where: predicate.Between("b", 20, 40)})
	require.NoError(t, err)
	assert.Equal(t, []data.Row{{31}, {21}}, res.Rows)
}

func TestExclusiveBoundsUnderEveryDirection(t *testing.T) {
	eng := abcdEngine(t)
	cases := []struct {
		where predicate.Predicate
		want  []data.Row
	}{
		{
			where: predicate.Predicate{{Column: "a", Op: predicate.OpLt, Value: 30}},
			want:  []data.Row{{10}, {20}},
		},
		{
			where: predicate.Predicate{{Column: "a", Op: predicate.OpGt, Value: 10}, {Column: "a", Op: predicate.OpLt, Value: 40}},
			want:  []data.Row{{20}, {30}},
		},
	}
	froms := []string{"abcd", "abcd@{FORCE_INDEX=primary,ASC}", "abcd@{FORCE_INDEX=primary,DESC}", "abcd@{FORCE_INDEX=cd,DESC}", "abcd@{FORCE_INDEX=bcd,DESC}"}

	for _, tc := range cases {
		for _, from := range froms {
			res, err := eng.Query(context.Background(), planner.Query{From: from, Columns: []string{"a"}, Where: tc.where})
			require.NoError(t, err, from)
			assert.ElementsMatch(t, tc.want, res.Rows, "%s where %s", from, tc.where)
		}
	}
}

func TestCursorHoldsLease(t *testing.T) {
	eng := abcdEngine(t)

	cur, err := eng.Open(context.Background(), planner.Query{From: "abcd@cd"})
	require.NoError(t, err)
	_, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, eng.Catalog().Leases("abcd"))

	err = eng.DropTable("abcd")
	var schemaErr *dberrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "table in use", schemaErr.Reason)

	_, err = eng.CreateIndex("abcd", "d", []string{"d"}, false)
	require.ErrorAs(t, err, &schemaErr)

	// abandoned after one row
	cur.Close()
	cur.Close()
	assert.Zero(t, eng.Catalog().Leases("abcd"))

	require.NoError(t, eng.DropTable("abcd"))
	_, err = eng.Query(context.Background(), planner.Query{From: "abcd"})
	var tblErr *dberrors.TableNotFoundError
	assert.ErrorAs(t, err, &tblErr)
	assert.Empty(t, eng.Tables())
}

func TestCreateIndexBackfills(t *testing.T) {
	eng := abcdEngine(t)

	_, err := eng.CreateIndex("abcd", "d", []string{"d"}, true)
	require.NoError(t, err)
	require.NoError(t, eng.Insert("abcd", data.Row{50, 51, 52, 53}))

	res, err := eng.Query(context.Background(), planner.Query{
		From:    "abcd@d",
		Columns: []string{"a", "d"},
		Where:   predicate.Predicate{{Column: "d", Op: predicate.OpGt, Value: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, []data.Row{{30, 33}, {40, 43}, {50, 53}}, res.Rows)
	assert.Zero(t, res.Stats.RowsFetched)

	err = eng.Insert("abcd", data.Row{60, 61, 62, 53})
	var constraint *dberrors.ConstraintError
	require.ErrorAs(t, err, &constraint)

	_, err = eng.CreateIndex("abcd", "B", []string{"c"}, false)
	var schemaErr *dberrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestInsertConstraints(t *testing.T) {
	eng := abcdEngine(t)
	var constraint *dberrors.ConstraintError

	require.ErrorAs(t, eng.Insert("abcd", data.Row{10, 1, 2, 3}), &constraint)
	require.ErrorAs(t, eng.Insert("abcd", data.Row{11, 21, 22, 23}), &constraint)
	require.ErrorAs(t, eng.Insert("abcd", data.Row{11, 1}), &constraint)

	res, err := eng.Query(context.Background(), planner.Query{From: "abcd"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 4)
}

func TestExplain(t *testing.T) {
	eng := abcdEngine(t)
	root, err := eng.Explain(context.Background(), planner.Query{
		From:    "abcd@b",
		Columns: []string{"b"},
		Where:   predicate.Between("c", 20, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, plan.CountNodes(root))
	assert.Contains(t, plan.PrintTree(root), "table: abcd@b")
	assert.Zero(t, eng.Catalog().Leases("abcd"))
}

func TestConcurrentQueries(t *testing.T) {
	eng := abcdEngine(t)
	froms := []string{"abcd", "abcd@primary", "abcd@b", "abcd@cd", "abcd@bcd", "abcd@{FORCE_INDEX=cd,DESC}"}

	var g errgroup.Group
	for i := 0; i < 24; i++ {
		from := froms[i%len(froms)]
		g.Go(func() error {
			res, err := eng.Query(context.Background(), planner.Query{From: from, Where: predicate.Between("a", 20, 30)})
			if err != nil {
				return err
			}
			if len(res.Rows) != 2 {
				t.Errorf("%s: expected 2 rows, got %d", from, len(res.Rows))
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := int64(0); i < 50; i++ {
			if err := eng.Insert("abcd", data.Row{1000 + i, 1000 + i, 1000 + i, 1000 + i}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())
	assert.Zero(t, eng.Catalog().Leases("abcd"))
}

func TestDropTableDuringInserts(t *testing.T) {
	eng := abcdEngine(t)

	var g errgroup.Group
	for w := int64(0); w < 4; w++ {
		g.Go(func() error {
			for i := int64(0); i < 100; i++ {
				k := 1000 + w*100 + i
				err := eng.Insert("abcd", data.Row{k, k, k, k})
				var notFound *dberrors.TableNotFoundError
				if errors.As(err, &notFound) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error { return eng.DropTable("abcd") })
	require.NoError(t, g.Wait())

	eng.mu.RLock()
	defer eng.mu.RUnlock()
	assert.Empty(t, eng.stores)
	assert.Empty(t, eng.Tables())
}

func TestQuerySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	eng := abcdEngine(t)
	_, err := eng.Query(context.Background(), planner.Query{From: "abcd@bcd", Where: predicate.Between("b", 20, 30)})
	require.NoError(t, err)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "engine.query")
	require.Contains(t, byName, "planner.plan")
	require.Contains(t, byName, "executor.run")

	root := byName["engine.query"].SpanContext().SpanID()
	assert.Equal(t, root, byName["planner.plan"].Parent().SpanID())
	assert.Equal(t, root, byName["executor.run"].Parent().SpanID())
}
