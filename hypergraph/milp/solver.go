// Package milp defines the small solver-facing interface the traversal
// planner depends on, together with a pure-Go backend built on the
// gophersat pseudo-boolean solver.
//
// File organization:
//   - solver.go: Solver/Variable/Constraint/Objective interfaces and Result
//   - gophersat.go: pseudo-boolean backend (unary integer encoding)
//
// The planner only ever talks to the interfaces in this file, so any
// MILP solver can be swapped in behind them.
package milp

import (
	"fmt"
	"time"
)

// Result is the outcome of a Solve call.
type Result uint8

const (
	// Optimal means the solver proved the returned solution optimal.
	Optimal Result = iota
	// Feasible means the time budget expired with a solution in hand
	// that was not proven optimal.
	Feasible
	// Infeasible means no assignment satisfies the constraints.
	Infeasible
	// Unbounded means the objective can decrease without limit. It
	// cannot occur for models whose variables are all bounded; backends
	// report it only to surface internal errors.
	Unbounded
)

// String returns the string representation of Result.
func (r Result) String() string {
	switch r {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// Variable is an opaque handle to an integer decision variable.
type Variable interface {
	Name() string
}

// Constraint is a closed interval [lo, hi] over a weighted sum of
// variables. Coefficients default to zero until set.
type Constraint interface {
	Name() string
	SetCoefficient(v Variable, coeff int64)
}

// Objective is the linear function minimised by Solve. Coefficients
// default to zero until set; setting a coefficient twice overwrites.
type Objective interface {
	SetCoefficient(v Variable, coeff int64)
}

// Solver is the model-building and solving surface consumed by the
// planner. Implementations are not safe for concurrent use; one solver
// instance services one model.
type Solver interface {
	// MakeIntVar creates an integer variable with inclusive bounds.
	MakeIntVar(lo, hi int, name string) Variable

	// MakeConstraint creates an empty constraint with inclusive bounds.
	MakeConstraint(lo, hi int64, name string) Constraint

	// Objective returns the minimisation objective of the model.
	Objective() Objective

	// Solve runs the solver. A zero time budget means no limit. The
	// error is non-nil only for backend failures (timeout with no
	// solution, internal errors); Infeasible is reported through the
	// Result, not the error.
	Solve(timeBudget time.Duration) (Result, error)

	// SolutionValue returns the value of v in the last solution. Only
	// valid after Solve returned Optimal or Feasible.
	SolutionValue(v Variable) float64
}
