package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
)

func abcd(t *testing.T) *schema.Table {
	t.Helper()
	cols := []schema.Column{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	tbl, err := schema.NewTable("abcd", cols, []string{"a"})
	require.NoError(t, err)
	return tbl
}

func TestComparisonMatches(t *testing.T) {
	tests := []struct {
		op   Op
		v    int64
		want bool
	}{
		{OpEq, 20, true}, {OpEq, 21, false},
		{OpNe, 20, false}, {OpNe, 21, true},
		{OpLt, 19, true}, {OpLt, 20, false},
		{OpLe, 20, true}, {OpLe, 21, false},
		{OpGt, 21, true}, {OpGt, 20, false},
		{OpGe, 20, true}, {OpGe, 19, false},
	}
	for _, tt := range tests {
		c := Comparison{Column: "a", Op: tt.op, Value: 20}
		assert.Equal(t, tt.want, c.Matches(tt.v), "%d %s 20", tt.v, tt.op)
	}
}

func TestBindAndEval(t *testing.T) {
	tbl := abcd(t)
	p := Between("a", 20, 30).And(Comparison{Column: "d", Op: OpNe, Value: 33})

	f, err := Bind(tbl, p)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []int{0, 0, 3}, f.Ordinals())
	assert.Equal(t, p, f.Predicate())

	assert.False(t, f.Eval(data.Row{10, 11, 12, 13}))
	assert.True(t, f.Eval(data.Row{20, 21, 22, 23}))
	assert.False(t, f.Eval(data.Row{30, 31, 32, 33}))

	var nilFilter *Filter
	assert.True(t, nilFilter.Eval(data.Row{1, 2, 3, 4}))

	_, err = Bind(tbl, Predicate{{Column: "zz", Op: OpEq, Value: 1}})
	var colErr *dberrors.ColumnNotFoundError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "zz", colErr.ColumnName)
}

func TestPredicateString(t *testing.T) {
	assert.Equal(t, "true", Predicate(nil).String())
	assert.Equal(t, "a >= 20 AND a <= 30", Between("a", 20, 30).String())
	assert.Equal(t, []string{"a", "c"}, Between("a", 1, 2).And(Comparison{Column: "c", Op: OpEq, Value: 3}).Columns())
}

func TestIntervals(t *testing.T) {
	p := Between("a", 20, 30).
		And(Comparison{Column: "a", Op: OpGt, Value: 25}).
		And(Comparison{Column: "b", Op: OpEq, Value: 7}).
		And(Comparison{Column: "c", Op: OpNe, Value: 1})

	ivs := Intervals(p)
	a := ivs["a"]
	assert.Equal(t, Interval{Lo: 25, Hi: 30, HasLo: true, HasHi: true, HiIncl: true}, a)
	assert.True(t, a.Contains(26))
	assert.False(t, a.Contains(25))
	assert.True(t, a.Contains(30))
	assert.False(t, a.IsPoint())

	assert.True(t, ivs["b"].IsPoint())
	_, hasC := ivs["c"]
	assert.False(t, hasC, "!= does not narrow")
}

func TestIntervalEmpty(t *testing.T) {
	tests := []struct {
		name  string
		p     Predicate
		empty bool
	}{
		{"crossed", Predicate{{"a", OpGe, 30}, {"a", OpLe, 20}}, true},
		{"touching exclusive", Predicate{{"a", OpGt, 20}, {"a", OpLe, 20}}, true},
		{"conflicting equalities", Predicate{{"a", OpEq, 1}, {"a", OpEq, 2}}, true},
		{"point", Predicate{{"a", OpGe, 20}, {"a", OpLe, 20}}, false},
		{"half open", Predicate{{"a", OpLt, 5}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, Intervals(tt.p)["a"].Empty())
		})
	}
	assert.False(t, Unbounded.Constrained())
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in   string
		want Predicate
	}{
		{"c >= 20", Predicate{{"c", OpGe, 20}}},
		{"c>=20", Predicate{{"c", OpGe, 20}}},
		{"A = -5", Predicate{{"a", OpEq, -5}}},
		{"b <> 3", Predicate{{"b", OpNe, 3}}},
		{"b != 3", Predicate{{"b", OpNe, 3}}},
		{"d<1", Predicate{{"d", OpLt, 1}}},
		{"c BETWEEN 20 AND 30", Between("c", 20, 30)},
		{"c between 20 and 30", Between("c", 20, 30)},
		{"c BETWEEN -10 AND -1", Between("c", -10, -1)},
		{"  b\t>  7 ", Predicate{{"b", OpGt, 7}}},
		{"a>-1", Predicate{{"a", OpGt, -1}}},
	}
	for _, tt := range tests {
		got, err := ParseTerm(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	bad := []struct {
		in  string
		msg string
	}{
		{"", "expected column name, got end of term"},
		{"c", "expected operator or BETWEEN, got end of term"},
		{"c ~ 1", "expected operator or BETWEEN"},
		{"c ! 1", "expected operator or BETWEEN"},
		{"c = x", `expected integer, got "x" at col 5`},
		{"c = -", "expected integer"},
		{"c BETWEEN 1", "expected AND, got end of term"},
		{"c BETWEEN 1 OR 2", `expected AND, got "OR" at col 13`},
		{"c = 1 2", `unexpected "2" at col 7`},
		{"1 = c", "expected column name"},
		{"c = 99999999999999999999", "invalid integer"},
	}
	for _, tt := range bad {
		_, err := ParseTerm(tt.in)
		require.Error(t, err, tt.in)
		assert.Contains(t, err.Error(), tt.msg, tt.in)
	}

	p, err := ParseTerms([]string{"a >= 20", "a <= 30"})
	require.NoError(t, err)
	assert.Equal(t, Between("a", 20, 30), p)
}
