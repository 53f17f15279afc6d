package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/engine"
	"github.com/leengari/idxscan/internal/planner"
	"github.com/leengari/idxscan/internal/predicate"
)

func TestReadDatabase(t *testing.T) {
	meta, err := ReadDatabase("testdata/abcd.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fixture", meta.Name)
	require.Len(t, meta.Tables, 1)
	tbl := meta.Tables[0]
	assert.Equal(t, []string{"a"}, tbl.PrimaryKey)
	require.Len(t, tbl.Indexes, 3)
	assert.Equal(t, IndexMeta{Name: "bcd", Columns: []string{"b", "c", "d"}, Unique: true}, tbl.Indexes[2])
	assert.Equal(t, [][]int64{{10, 11, 12, 13}, {20, 21, 22, 23}, {30, 31, 32, 33}, {40, 41, 42, 43}}, tbl.Rows)
}

func TestLoadDatabaseIntoEngine(t *testing.T) {
	eng, err := engine.New(engine.Options{})
	require.NoError(t, err)

	_, err = LoadDatabase("testdata/abcd.yaml", eng, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd"}, eng.Tables())

	res, err := eng.Query(context.Background(), planner.Query{
		From:    "abcd@b",
		Columns: []string{"b"},
		Where:   predicate.Between("c", 20, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, []data.Row{{21}}, res.Rows)
}

func TestLoadDatabaseErrors(t *testing.T) {
	eng, err := engine.New(engine.Options{})
	require.NoError(t, err)

	_, err = LoadDatabase("testdata/missing.yaml", eng, nil)
	assert.Error(t, err)

	_, err = LoadDatabase("testdata/broken.json", eng, nil)
	var schemaErr *dberrors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, err.Error(), "failed to load table t")
}
