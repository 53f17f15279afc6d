package index

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/leengari/idxscan/internal/domain/data"
	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// Store holds every index of one table. Inserts serialize on the store
// mutex; readers work on snapshots and never take it for longer than the
// copy-on-write clone.
type Store struct {
	mu     sync.Mutex
	table  *schema.Table
	trees  map[string]*btree.BTreeG[item]
	batch  int
	open   atomic.Int64
	logger *slog.Logger
}

// NewStore creates empty index structures for every index of table.
// batchSize <= 0 selects DefaultBatchSize.
func NewStore(table *schema.Table, batchSize int, logger *slog.Logger) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		table:  table,
		trees:  make(map[string]*btree.BTreeG[item], len(table.Indexes())),
		batch:  batchSize,
		logger: logger,
	}
	for _, idx := range table.Indexes() {
		s.trees[idx.Name] = newTree()
	}
	return s
}

// Insert adds a row to the primary index and every secondary index.
// Nothing is written if any uniqueness check fails.
func (s *Store) Insert(row data.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table
	if len(row) != len(t.Columns) {
		return &dberrors.ConstraintError{
			Table:      t.Name,
			Constraint: "arity",
			Reason:     fmt.Sprintf("expected %d values, got %d", len(t.Columns), len(row)),
		}
	}

	row = row.Copy()
	pk := row.Key(t.PrimaryKey)
	primary := s.trees[schema.PrimaryIndexName]
	if primary.Has(item{key: pk}) {
		return dberrors.NewPrimaryKeyViolation(t.Name, pk)
	}

	for _, idx := range t.SecondaryIndexes() {
		if idx.Unique && s.hasPrefix(s.trees[idx.Name], row.Key(idx.Columns)) {
			return dberrors.NewUniqueViolation(t.Name, idx.Name, row.Key(idx.Columns))
		}
	}

	primary.ReplaceOrInsert(item{key: pk, pk: pk, row: row, cols: len(pk)})
	for _, idx := range t.SecondaryIndexes() {
		s.trees[idx.Name].ReplaceOrInsert(secondaryItem(idx, row, pk))
	}
	return nil
}

// AddIndex builds a new secondary index from the rows already stored.
// table is the definition that contains idx.
func (s *Store) AddIndex(table *schema.Table, idx *schema.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trees[idx.Name]; exists {
		return dberrors.NewDuplicateIndex(table.Name, idx.Name)
	}

	tree := newTree()
	var violation error
	s.trees[schema.PrimaryIndexName].Ascend(func(x item) bool {
		key := x.row.Key(idx.Columns)
		if idx.Unique && s.hasPrefix(tree, key) {
			violation = dberrors.NewUniqueViolation(table.Name, idx.Name, key)
			return false
		}
		tree.ReplaceOrInsert(secondaryItem(idx, x.row, x.pk))
		return true
	})
	if violation != nil {
		return violation
	}

	s.trees[idx.Name] = tree
	s.table = table
	s.logger.Debug("index built",
		slog.String("table", table.Name),
		slog.String("index", idx.Name),
		slog.Int("entries", tree.Len()),
		slog.Bool("unique", idx.Unique))
	return nil
}

// Len returns the number of stored rows
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trees[schema.PrimaryIndexName].Len()
}

// OpenIterators returns the number of iterators not yet closed across all
// snapshots of this store
func (s *Store) OpenIterators() int64 {
	return s.open.Load()
}

// Snapshot returns a consistent, immutable view of every index.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{indexes: make(map[string]*treeIndex, len(s.trees))}
	for _, def := range s.table.Indexes() {
		tree, ok := s.trees[def.Name]
		if !ok {
			continue
		}
		snap.indexes[def.Name] = &treeIndex{
			def:   def,
			tree:  tree.Clone(),
			batch: s.batch,
			open:  &s.open,
		}
	}
	snap.table = s.table
	return snap
}

func (s *Store) hasPrefix(tree *btree.BTreeG[item], prefix data.Key) bool {
	found := false
	tree.AscendGreaterOrEqual(item{key: prefix}, func(x item) bool {
		found = x.key.HasPrefix(prefix)
		return false
	})
	return found
}

func secondaryItem(idx *schema.Index, row data.Row, pk data.Key) item {
	cols := row.Key(idx.Columns)
	key := make(data.Key, 0, len(cols)+len(pk))
	key = append(key, cols...)
	key = append(key, pk...)
	return item{key: key, pk: pk, cols: len(cols)}
}

// Snapshot is a point-in-time view of a table's indexes
type Snapshot struct {
	table   *schema.Table
	indexes map[string]*treeIndex
}

// Index returns the named index of the snapshot
func (sn *Snapshot) Index(name string) (Index, error) {
	idx, ok := sn.indexes[name]
	if !ok {
		return nil, &dberrors.IndexNotFoundError{Table: sn.table.Name, Name: name}
	}
	return idx, nil
}

// Fetch returns the row with the given primary key
func (sn *Snapshot) Fetch(pk data.Key) (data.Row, bool) {
	x, ok := sn.indexes[schema.PrimaryIndexName].tree.Get(item{key: pk})
	if !ok {
		return nil, false
	}
	return x.row, true
}
