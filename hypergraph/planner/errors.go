package planner

import "errors"

// Planning errors. None of these are recovered inside the planner;
// every one aborts the planning call and is surfaced to the caller
// wrapped with context.
var (
	// ErrInconsistentVertexKind means an identifier was re-added with a
	// different vertex kind.
	ErrInconsistentVertexKind = errors.New("vertex re-added with a different kind")

	// ErrPropertiesAlreadySet means SetProperties was called twice on
	// the same vertex.
	ErrPropertiesAlreadySet = errors.New("vertex properties already set")

	// ErrConstraintsBeforeVariables means constraint initialisation ran
	// before variable initialisation. Always an internal bug.
	ErrConstraintsBeforeVariables = errors.New("constraints initialised before variables")

	// ErrPlanInfeasible means the solver proved no valid traversal
	// exists. A well-formed pattern is always feasible; this indicates
	// a connected component of the pattern with no indexable vertex.
	ErrPlanInfeasible = errors.New("no feasible traversal plan")

	// ErrSolverFailure means the solver backend failed: timeout with no
	// solution in hand, or an internal error.
	ErrSolverFailure = errors.New("solver failure")

	// ErrIllegalCast means a Thing vertex was asked for its Type view
	// or vice versa. Always a programmer error.
	ErrIllegalCast = errors.New("illegal planner vertex cast")
)
