package milp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveMinimisesObjective(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 2, "x")
	y := s.MakeIntVar(0, 2, "y")

	// x + y >= 2, minimise 2x + y: optimum is x=0, y=2.
	con := s.MakeConstraint(2, 4, "sum")
	con.SetCoefficient(x, 1)
	con.SetCoefficient(y, 1)

	s.Objective().SetCoefficient(x, 2)
	s.Objective().SetCoefficient(y, 1)

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Optimal, result)
	assert.Equal(t, 0.0, s.SolutionValue(x))
	assert.Equal(t, 2.0, s.SolutionValue(y))
}

func TestSolveEqualityConstraint(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 3, "x")
	y := s.MakeIntVar(0, 3, "y")

	// x - y = 0 with x + y = 4 forces x = y = 2.
	diff := s.MakeConstraint(0, 0, "diff")
	diff.SetCoefficient(x, 1)
	diff.SetCoefficient(y, -1)

	sum := s.MakeConstraint(4, 4, "sum")
	sum.SetCoefficient(x, 1)
	sum.SetCoefficient(y, 1)

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Optimal, result)
	assert.Equal(t, 2.0, s.SolutionValue(x))
	assert.Equal(t, 2.0, s.SolutionValue(y))
}

func TestSolveInfeasible(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 1, "x")

	con := s.MakeConstraint(2, 2, "impossible")
	con.SetCoefficient(x, 1)

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, result)
}

func TestSolveInfeasibleLowerBound(t *testing.T) {
	s := NewSatSolver()

	// A variable whose lower bound exceeds its upper bound can never
	// take a value.
	s.MakeIntVar(3, 1, "x")

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, result)
}

func TestSolveConstantConstraint(t *testing.T) {
	s := NewSatSolver()
	s.MakeIntVar(0, 1, "x")

	// An empty sum is constant zero: satisfiable only if the interval
	// contains zero.
	s.MakeConstraint(1, 5, "constant")

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, result)
}

func TestCoefficientOverwrite(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 1, "x")
	y := s.MakeIntVar(0, 1, "y")

	one := s.MakeConstraint(1, 1, "pick")
	one.SetCoefficient(x, 1)
	one.SetCoefficient(y, 1)

	// First make x expensive, then overwrite to make it cheap. The
	// second write must replace the first, not add to it.
	s.Objective().SetCoefficient(x, 100)
	s.Objective().SetCoefficient(y, 10)
	s.Objective().SetCoefficient(x, 1)

	result, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, Optimal, result)
	assert.Equal(t, 1.0, s.SolutionValue(x))
	assert.Equal(t, 0.0, s.SolutionValue(y))
}

func TestResolveAfterObjectiveChange(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 1, "x")
	y := s.MakeIntVar(0, 1, "y")

	one := s.MakeConstraint(1, 1, "pick")
	one.SetCoefficient(x, 1)
	one.SetCoefficient(y, 1)

	s.Objective().SetCoefficient(x, 1)
	s.Objective().SetCoefficient(y, 10)

	result, err := s.Solve(0)
	require.NoError(t, err)
	require.Equal(t, Optimal, result)
	assert.Equal(t, 1.0, s.SolutionValue(x))

	s.Objective().SetCoefficient(x, 10)
	s.Objective().SetCoefficient(y, 1)

	result, err = s.Solve(0)
	require.NoError(t, err)
	require.Equal(t, Optimal, result)
	assert.Equal(t, 1.0, s.SolutionValue(y))
	assert.Equal(t, 0.0, s.SolutionValue(x))
}

func TestSolveWithTimeBudget(t *testing.T) {
	s := NewSatSolver()
	x := s.MakeIntVar(0, 1, "x")
	con := s.MakeConstraint(1, 1, "fix")
	con.SetCoefficient(x, 1)

	result, err := s.Solve(30 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, []Result{Optimal, Feasible}, result)
	assert.Equal(t, 1.0, s.SolutionValue(x))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "optimal", Optimal.String())
	assert.Equal(t, "feasible", Feasible.String())
	assert.Equal(t, "infeasible", Infeasible.String())
	assert.Equal(t, "unbounded", Unbounded.String())
}
