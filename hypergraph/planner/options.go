package planner

import (
	"time"

	"github.com/wbrown/janus-hypergraph/hypergraph/annotations"
	"github.com/wbrown/janus-hypergraph/hypergraph/milp"
)

// DefaultTimeBudget bounds a single solve call when the caller does not
// set one. Patterns of realistic size solve in well under this; the
// budget exists so that a pathological model degrades to a feasible
// plan instead of hanging the query.
const DefaultTimeBudget = 10 * time.Second

// PlannerOptions configures planning.
type PlannerOptions struct {
	// Solver budget per solve call (0 = DefaultTimeBudget). On timeout
	// the best feasible plan found so far is used.
	TimeBudget time.Duration

	// Shared plan cache (optional). Cached plans are keyed on the
	// pattern structure and the statistics epoch they were planned
	// against.
	Cache *PlanCache

	// Handler receives planning events (optional). Nil disables event
	// collection entirely.
	Handler annotations.Handler

	// SolverFactory builds the solver backend for one planning call
	// (default: the pseudo-boolean backend).
	SolverFactory func() milp.Solver
}

// DefaultPlannerOptions returns the standard configuration.
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		TimeBudget:    DefaultTimeBudget,
		SolverFactory: func() milp.Solver { return milp.NewSatSolver() },
	}
}

func (o *PlannerOptions) normalize() {
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.SolverFactory == nil {
		o.SolverFactory = func() milp.Solver { return milp.NewSatSolver() }
	}
}
