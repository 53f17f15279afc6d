package engine

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leengari/idxscan/internal/planner"
	"github.com/leengari/idxscan/internal/predicate"
)

// MockObserver is a test observer that records events
type MockObserver struct {
	mu     sync.Mutex
	Events []Event
}

func (m *MockObserver) OnEvent(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockObserver) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = string(e.Type)
	}
	return out
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(Options{HintCacheSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func TestAddObserver(t *testing.T) {
	eng := newEngine(t)
	observer := &MockObserver{}

	eng.AddObserver(observer)

	if len(eng.observers) != 1 {
		t.Errorf("Expected 1 observer, got %d", len(eng.observers))
	}
}

func TestRemoveObserver(t *testing.T) {
	eng := newEngine(t)
	observer := &MockObserver{}

	eng.AddObserver(observer)
	eng.RemoveObserver(observer)

	if len(eng.observers) != 0 {
		t.Errorf("Expected 0 observers, got %d", len(eng.observers))
	}
}

func TestNotifyWithNoObservers(t *testing.T) {
	eng := newEngine(t)

	// Should not panic
	eng.notify(Event{Type: EventPlanStart, QueryID: "test-query"})
}

func TestQueryLifecycleEvents(t *testing.T) {
	eng := abcdEngine(t)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	_, err := eng.Query(context.Background(), planner.Query{From: "abcd@cd", Where: predicate.Between("c", 20, 30)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	got := strings.Join(observer.types(), ",")
	if got != "plan_start,plan_end,exec_start,exec_end" {
		t.Fatalf("Unexpected event sequence %s", got)
	}

	id := observer.Events[0].QueryID
	if id == "" {
		t.Fatal("Expected a query id")
	}
	for _, e := range observer.Events {
		if e.QueryID != id {
			t.Errorf("Event %s has query id %s, want %s", e.Type, e.QueryID, id)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("Event %s has no timestamp", e.Type)
		}
	}

	planEnd, ok := observer.Events[1].Data.(map[string]any)
	if !ok || planEnd["index"] != "cd" {
		t.Errorf("Expected plan_end to name index cd, got %v", observer.Events[1].Data)
	}
}

func TestFailedHintStopsAtPlanning(t *testing.T) {
	eng := abcdEngine(t)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	_, err := eng.Query(context.Background(), planner.Query{From: "abcd@badidx"})
	if err == nil || err.Error() != `index "badidx" not found` {
		t.Fatalf("Expected index not found, got %v", err)
	}

	if got := strings.Join(observer.types(), ","); got != "plan_start" {
		t.Errorf("Expected only plan_start, got %s", got)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	eng := abcdEngine(t)
	eng.AddObserver(NewLoggingObserver(logger))

	if _, err := eng.Query(context.Background(), planner.Query{From: "abcd"}); err != nil {
		t.Fatalf("Query: %v", err)
	}

	out := buf.String()
	for _, ev := range []string{"plan_start", "plan_end", "exec_start", "exec_end"} {
		if !strings.Contains(out, "event="+ev) {
			t.Errorf("Expected %s in log output:\n%s", ev, out)
		}
	}
	if !strings.Contains(out, "msg=query_lifecycle") {
		t.Errorf("Expected query_lifecycle message:\n%s", out)
	}
}
