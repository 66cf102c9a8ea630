// Package annotations provides a clean, low-overhead annotation system
// for tracking traversal-planning metrics and debugging information.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Planning lifecycle
	PlanInvoked    = "plan/invoked"
	PlanCacheHit   = "plan/cache.hit"
	PlanGraphBuilt = "plan/graph.built"
	PlanDecoded    = "plan/decoded"

	// MILP model construction
	ModelVariablesInit   = "model/variables.initialised"
	ModelConstraintsInit = "model/constraints.initialised"
	ModelObjectiveSet    = "model/objective.updated"

	// Solver interaction
	SolveBegin     = "solve/begin"
	SolveCompleted = "solve/completed"

	// Errors
	ErrorGraphConstruction = "error/graph.construction"
	ErrorInfeasible        = "error/plan.infeasible"
	ErrorSolver            = "error/solver"
)

// Event represents a single annotation event during planning.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector accumulates events during planning. A nil handler disables
// collection entirely; all methods are cheap no-ops in that case.
type Collector struct {
	enabled bool
	handler Handler
	events  []Event
	mu      sync.Mutex
}

// NewCollector creates a new annotation collector.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 32),
	}
}

// Enabled reports whether events are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Add records a new event. Safe for concurrent use.
func (c *Collector) Add(event Event) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	if c.handler != nil {
		c.handler(event)
	}
}

// AddTiming records an event spanning from start until now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns a copy of all collected events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears the collector for reuse, keeping the handler.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
