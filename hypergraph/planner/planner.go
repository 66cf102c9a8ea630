// Package planner selects an optimal traversal plan for a query
// pattern by encoding root selection and edge direction as a small
// integer program and minimising the expected lookup cost under the
// current schema statistics.
//
// File organization:
//   - planner.go: Planner lifecycle and the top-level Plan entry point
//   - graph.go: vertex/edge registry and pattern replay
//   - vertex.go: per-vertex decision variables, constraints, costs
//   - edge.go: directional edge pairs, selection variables, costs
//   - decode.go: solution decoding into an ordered Plan
//   - cache.go: plan cache keyed on pattern structure and epoch
//   - options.go: PlannerOptions
//   - errors.go: sentinel errors
package planner

import (
	"fmt"
	"time"

	"github.com/wbrown/janus-hypergraph/hypergraph"
	"github.com/wbrown/janus-hypergraph/hypergraph/annotations"
	"github.com/wbrown/janus-hypergraph/hypergraph/milp"
	"github.com/wbrown/janus-hypergraph/hypergraph/pattern"
	"github.com/wbrown/janus-hypergraph/hypergraph/schema"
)

// state tracks the planner's lifecycle. initialiseModel consults it so
// that variables and constraints are built only once; the other states
// are recorded but gate nothing. Constraint-before-variable ordering
// bugs are caught by the per-vertex initialisation flags instead, which
// fail with ErrConstraintsBeforeVariables.
type state int

const (
	stateBuilding state = iota
	stateVariablesInitialised
	stateConstraintsInitialised
	stateSolved
	stateDecoded
)

func (s state) String() string {
	switch s {
	case stateBuilding:
		return "building"
	case stateVariablesInitialised:
		return "variables-initialised"
	case stateConstraintsInitialised:
		return "constraints-initialised"
	case stateSolved:
		return "solved"
	case stateDecoded:
		return "decoded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Planner owns the reified pattern graph and the MILP model built from
// it. One planner services one pattern; it is not safe for concurrent
// use.
type Planner struct {
	vertices map[hypergraph.Identifier]*Vertex
	edges    []*Edge

	solver    milp.Solver
	opts      PlannerOptions
	collector *annotations.Collector

	state state

	// Epoch of the statistics the objective was last built against.
	// Re-planning under a newer epoch re-runs only the objective;
	// variables and constraints are structural and stay put.
	objectiveEpoch uint64
	hasObjective   bool
}

// New creates an empty planner.
func New(opts PlannerOptions) *Planner {
	opts.normalize()
	return &Planner{
		vertices:  make(map[hypergraph.Identifier]*Vertex),
		solver:    opts.SolverFactory(),
		opts:      opts,
		collector: annotations.NewCollector(opts.Handler),
		state:     stateBuilding,
	}
}

// FromPattern creates a planner and replays the pattern into it.
func FromPattern(pat *pattern.Pattern, opts PlannerOptions) (*Planner, error) {
	p := New(opts)
	start := time.Now()
	if err := p.populate(pat); err != nil {
		p.collector.AddTiming(annotations.ErrorGraphConstruction, start,
			map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("building planner graph: %w", err)
	}
	p.collector.AddTiming(annotations.PlanGraphBuilt, start, map[string]interface{}{
		"vertices": len(p.vertices),
		"edges":    len(p.edges),
	})
	return p, nil
}

// Events returns the planning events collected so far.
func (p *Planner) Events() []annotations.Event {
	return p.collector.Events()
}

// initialiseModel builds variables and constraints. Runs once; later
// Plan calls reuse the structural model and only refresh the
// objective.
func (p *Planner) initialiseModel() error {
	if p.state != stateBuilding {
		return nil
	}

	start := time.Now()
	ordered := p.Vertices()
	for _, v := range ordered {
		v.initialiseVariables(p.solver)
	}
	for _, e := range p.edges {
		e.initialiseVariables(p.solver)
	}
	p.state = stateVariablesInitialised
	p.collector.AddTiming(annotations.ModelVariablesInit, start,
		map[string]interface{}{"count": len(ordered) + 2*len(p.edges)})

	start = time.Now()
	for _, e := range p.edges {
		e.initialiseConstraints(p.solver)
	}
	for _, v := range ordered {
		if err := v.initialiseConstraints(p.solver); err != nil {
			return err
		}
	}
	p.state = stateConstraintsInitialised
	p.collector.AddTiming(annotations.ModelConstraintsInit, start,
		map[string]interface{}{"count": len(ordered)})
	return nil
}

// updateObjective refreshes every cost coefficient from the schema
// statistics. Coefficients overwrite in place, so repeated calls under
// changing statistics never accumulate.
func (p *Planner) updateObjective(graph schema.Graph) {
	epoch := graph.Epoch()
	if p.hasObjective && epoch == p.objectiveEpoch {
		return
	}
	start := time.Now()
	objective := p.solver.Objective()
	for _, v := range p.Vertices() {
		v.updateObjective(objective, graph)
	}
	for _, e := range p.edges {
		e.updateObjective(objective, graph)
	}
	p.objectiveEpoch = epoch
	p.hasObjective = true
	p.collector.AddTiming(annotations.ModelObjectiveSet, start,
		map[string]interface{}{"epoch": epoch})
}

// Plan builds the model if needed, refreshes the objective against the
// given statistics, solves, and decodes the traversal plan.
func (p *Planner) Plan(graph schema.Graph) (*Plan, error) {
	if err := p.initialiseModel(); err != nil {
		return nil, err
	}
	p.updateObjective(graph)

	start := time.Now()
	p.collector.Add(annotations.Event{
		Name:  annotations.SolveBegin,
		Start: start,
		End:   start,
		Data:  map[string]interface{}{"budget": p.opts.TimeBudget},
	})

	result, err := p.solver.Solve(p.opts.TimeBudget)
	if err != nil {
		p.collector.AddTiming(annotations.ErrorSolver, start,
			map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	switch result {
	case milp.Optimal, milp.Feasible:
		p.collector.AddTiming(annotations.SolveCompleted, start,
			map[string]interface{}{"result": result.String()})
	case milp.Infeasible:
		p.collector.AddTiming(annotations.ErrorInfeasible, start,
			map[string]interface{}{"error": "model infeasible"})
		return nil, fmt.Errorf("%w: pattern has no indexable root", ErrPlanInfeasible)
	default:
		p.collector.AddTiming(annotations.ErrorSolver, start,
			map[string]interface{}{"error": result.String()})
		return nil, fmt.Errorf("%w: unexpected solver result %s", ErrSolverFailure, result)
	}

	for _, v := range p.Vertices() {
		v.recordValues(p.solver)
	}
	for _, e := range p.edges {
		e.recordValues(p.solver)
	}
	p.state = stateSolved

	start = time.Now()
	plan, err := p.decode()
	if err != nil {
		p.collector.AddTiming(annotations.ErrorSolver, start,
			map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	p.state = stateDecoded
	p.collector.AddTiming(annotations.PlanDecoded, start, map[string]interface{}{
		"roots": len(plan.Roots),
		"order": plan.Order,
	})
	return plan, nil
}

// PlanPattern is the top-level entry point: it consults the cache,
// builds a planner for the pattern on a miss, and plans against the
// given statistics.
func PlanPattern(pat *pattern.Pattern, graph schema.Graph, opts PlannerOptions) (*Plan, error) {
	opts.normalize()
	collector := annotations.NewCollector(opts.Handler)

	start := time.Now()
	key := pat.Key()
	epoch := graph.Epoch()
	collector.AddTiming(annotations.PlanInvoked, start,
		map[string]interface{}{"pattern": key})

	if cached, ok := opts.Cache.Get(key, epoch); ok {
		collector.AddTiming(annotations.PlanCacheHit, start,
			map[string]interface{}{"epoch": epoch})
		return cached, nil
	}

	p, err := FromPattern(pat, opts)
	if err != nil {
		return nil, err
	}
	plan, err := p.Plan(graph)
	if err != nil {
		return nil, err
	}
	opts.Cache.Set(key, epoch, plan)
	return plan, nil
}
