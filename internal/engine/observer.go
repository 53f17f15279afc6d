package engine

import "time"

// EventType represents different lifecycle phases in query execution
type EventType string

const (
	EventPlanStart EventType = "plan_start"
	EventPlanEnd   EventType = "plan_end"
	EventExecStart EventType = "exec_start"
	EventExecEnd   EventType = "exec_end"
)

// Event represents a lifecycle event in query execution
type Event struct {
	Type      EventType // Type of event
	QueryID   string    // Query ID shared by every event of one query
	Timestamp time.Time // When the event occurred
	Data      any       // Phase-specific data (table reference, chosen index, stats)
}

// Observer interface for event subscribers.
// Observers may be called from concurrent queries.
type Observer interface {
	OnEvent(event Event)
}
