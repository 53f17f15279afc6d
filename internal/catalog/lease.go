package catalog

import (
	"sync"

	"github.com/leengari/idxscan/internal/domain/schema"
)

// Lease keeps a table from being altered or dropped while it is read
type Lease struct {
	Table *schema.Table

	entry *entry
	once  sync.Once
}

// Release unpins the table. Calling it more than once is a no-op.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.entry.leases.Add(-1)
	})
}
