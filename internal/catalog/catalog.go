// Package catalog holds table and index definitions and guards tables
// against schema changes while queries are reading them.
package catalog

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/domain/schema"
)

// TableHook runs under the catalog write lock before a new table is
// published. Returning an error aborts the creation.
type TableHook func(*schema.Table) error

// IndexHook runs under the catalog write lock before a new index is
// published, typically to backfill the index store.
type IndexHook func(*schema.Table, *schema.Index) error

type entry struct {
	table  *schema.Table
	leases atomic.Int64
}

// Catalog is an in-memory catalog. It is read-mostly: lookups and leases
// take a read lock; definitions take the write lock.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*entry
	logger *slog.Logger
}

// New creates an empty catalog
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		tables: make(map[string]*entry),
		logger: logger,
	}
}

// CreateTable registers a table definition. hook may be nil.
func (c *Catalog) CreateTable(def *schema.Table, hook TableHook) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[fold(def.Name)]; exists {
		return &dberrors.SchemaError{Table: def.Name, Reason: "a table with the same name already exists"}
	}

	if hook != nil {
		if err := hook(def); err != nil {
			return err
		}
	}

	c.tables[fold(def.Name)] = &entry{table: def}
	c.logger.Debug("table created",
		slog.String("table", def.Name),
		slog.Int("columns", len(def.Columns)))
	return nil
}

// CreateIndex adds a secondary index to an existing table. The table
// definition is replaced copy-on-write so that a reader holding the previous
// definition keeps a consistent view. hook may be nil.
func (c *Catalog) CreateIndex(tableName, indexName string, columns []string, unique bool, hook IndexHook) (*schema.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tables[fold(tableName)]
	if !ok {
		return nil, &dberrors.TableNotFoundError{Name: tableName}
	}
	if n := e.leases.Load(); n > 0 {
		return nil, &dberrors.SchemaError{Table: tableName, Object: indexName, Reason: "table in use"}
	}

	next := e.table.Clone()
	idx, err := next.AddIndex(indexName, columns, unique)
	if err != nil {
		return nil, err
	}

	if hook != nil {
		if err := hook(next, idx); err != nil {
			return nil, err
		}
	}

	e.table = next
	c.logger.Debug("index created",
		slog.String("table", tableName),
		slog.String("index", indexName),
		slog.Bool("unique", unique))
	return idx, nil
}

// DropTable removes a table. It fails while any lease on the table is held.
// hook may be nil; it runs under the write lock before the table is removed
// and returning an error keeps the table.
func (c *Catalog) DropTable(name string, hook TableHook) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tables[fold(name)]
	if !ok {
		return &dberrors.TableNotFoundError{Name: name}
	}
	if n := e.leases.Load(); n > 0 {
		return &dberrors.SchemaError{Table: name, Reason: "table in use"}
	}

	if hook != nil {
		if err := hook(e.table); err != nil {
			return err
		}
	}

	delete(c.tables, fold(name))
	c.logger.Debug("table dropped", slog.String("table", name))
	return nil
}

// Table returns the current definition of the named table
func (c *Catalog) Table(name string) (*schema.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tables[fold(name)]
	if !ok {
		return nil, &dberrors.TableNotFoundError{Name: name}
	}
	return e.table, nil
}

// Index looks up an index by table and index name
func (c *Catalog) Index(tableName, indexName string) (*schema.Index, error) {
	t, err := c.Table(tableName)
	if err != nil {
		return nil, err
	}
	idx := t.Index(indexName)
	if idx == nil {
		return nil, &dberrors.IndexNotFoundError{Table: tableName, Name: indexName}
	}
	return idx, nil
}

// Tables returns the registered table names in sorted order
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for _, e := range c.tables {
		names = append(names, e.table.Name)
	}
	sort.Strings(names)
	return names
}

// Acquire pins the named table for the duration of a query. The returned
// lease carries the definition that was current at acquisition time.
func (c *Catalog) Acquire(name string) (*Lease, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tables[fold(name)]
	if !ok {
		return nil, &dberrors.TableNotFoundError{Name: name}
	}
	e.leases.Add(1)
	return &Lease{Table: e.table, entry: e}, nil
}

// Leases returns the number of outstanding leases on a table
func (c *Catalog) Leases(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tables[fold(name)]
	if !ok {
		return 0
	}
	return e.leases.Load()
}

// table names compare case-insensitively
func fold(name string) string {
	return strings.ToLower(name)
}
