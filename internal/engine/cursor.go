package engine

import (
	"github.com/leengari/idxscan/internal/executor"
	"github.com/leengari/idxscan/internal/plan"
)

// Cursor streams query rows. Close it to release the table.
type Cursor struct {
	*executor.Cursor
	engine *Engine
	spec   *plan.ScanSpec
	closed bool
}

// Columns returns the output column names
func (c *Cursor) Columns() []string {
	return c.spec.Columns
}

// Spec returns the plan the cursor executes
func (c *Cursor) Spec() *plan.ScanSpec {
	return c.spec
}

// Close releases the scan and the table lease; it reports exec_end once
func (c *Cursor) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.Cursor.Close()
	c.engine.notify(Event{Type: EventExecEnd, QueryID: c.spec.ID.String(), Data: c.Stats()})
}
