package milp

import (
	"fmt"
	"math"
	"time"

	"github.com/crillab/gophersat/solver"
)

// weightCap bounds objective weights so that summing them cannot
// overflow the solver's int cost arithmetic even for patterns with
// hundreds of vertices over very large stored graphs.
const weightCap = 1 << 30

// SatSolver implements Solver on top of gophersat's weighted
// pseudo-boolean engine. An integer variable with domain [lo, hi] is
// unary-encoded as hi boolean literals of weight one; the variable's
// value is the number of literals assigned true, and lo > 0 becomes an
// at-least cardinality constraint. Linear constraints expand each
// variable into its literals and become a GtEq/LtEq pair. The PB
// problem is rebuilt on every Solve call, so objective coefficients may
// be overwritten and the model re-solved.
type SatSolver struct {
	nbLits      int
	vars        []*satVar
	constraints []*satConstraint
	objective   *satObjective
	model       []bool
	hasModel    bool
}

// NewSatSolver creates an empty model.
func NewSatSolver() *SatSolver {
	return &SatSolver{objective: &satObjective{}}
}

type satVar struct {
	name string
	lo   int
	lits []int // 1-based literal indices, each contributing one unit
}

// Name returns the variable name.
func (v *satVar) Name() string { return v.name }

// linexp is a weighted sum over variables with overwrite semantics and
// a stable entry order. Stable order keeps the emitted PB constraints
// identical across runs, which keeps the solver deterministic.
type linexp struct {
	entries []linentry
	index   map[*satVar]int
}

type linentry struct {
	v     *satVar
	coeff int64
}

func (l *linexp) set(v *satVar, coeff int64) {
	if l.index == nil {
		l.index = make(map[*satVar]int)
	}
	if i, ok := l.index[v]; ok {
		l.entries[i].coeff = coeff
		return
	}
	l.index[v] = len(l.entries)
	l.entries = append(l.entries, linentry{v: v, coeff: coeff})
}

// expand flattens the expression into parallel literal/weight slices.
func (l *linexp) expand() (lits []int, weights []int) {
	for _, e := range l.entries {
		coeff := e.coeff
		if coeff > weightCap {
			coeff = weightCap
		} else if coeff < -weightCap {
			coeff = -weightCap
		}
		for _, lit := range e.v.lits {
			lits = append(lits, lit)
			weights = append(weights, int(coeff))
		}
	}
	return lits, weights
}

type satConstraint struct {
	name   string
	lo, hi int64
	expr   linexp
}

// Name returns the constraint name.
func (c *satConstraint) Name() string { return c.name }

// SetCoefficient sets the weight of v in the constraint's sum.
func (c *satConstraint) SetCoefficient(v Variable, coeff int64) {
	c.expr.set(v.(*satVar), coeff)
}

type satObjective struct {
	expr linexp
}

// SetCoefficient sets the weight of v in the cost function.
func (o *satObjective) SetCoefficient(v Variable, coeff int64) {
	o.expr.set(v.(*satVar), coeff)
}

// MakeIntVar creates an integer variable with inclusive bounds.
func (s *SatSolver) MakeIntVar(lo, hi int, name string) Variable {
	v := &satVar{name: name, lo: lo}
	for i := 0; i < hi; i++ {
		s.nbLits++
		v.lits = append(v.lits, s.nbLits)
	}
	s.vars = append(s.vars, v)
	return v
}

// MakeConstraint creates an empty constraint with inclusive bounds.
func (s *SatSolver) MakeConstraint(lo, hi int64, name string) Constraint {
	c := &satConstraint{name: name, lo: lo, hi: hi}
	s.constraints = append(s.constraints, c)
	return c
}

// Objective returns the minimisation objective of the model.
func (s *SatSolver) Objective() Objective { return s.objective }

// Solve encodes the model as pseudo-boolean constraints and runs
// gophersat. A zero time budget means no limit.
func (s *SatSolver) Solve(timeBudget time.Duration) (Result, error) {
	var constrs []solver.PBConstr

	for _, v := range s.vars {
		if v.lo <= 0 {
			continue
		}
		if v.lo > len(v.lits) {
			return Infeasible, nil
		}
		constrs = append(constrs, solver.GtEq(append([]int(nil), v.lits...), unitWeights(len(v.lits)), v.lo))
	}

	for _, c := range s.constraints {
		lits, weights := c.expr.expand()
		if len(lits) == 0 {
			// A constant zero sum: satisfiable iff the interval
			// contains zero.
			if c.lo > 0 || c.hi < 0 {
				return Infeasible, nil
			}
			continue
		}
		if c.lo > math.MinInt32 {
			constrs = append(constrs, solver.GtEq(append([]int(nil), lits...), append([]int(nil), weights...), int(c.lo)))
		}
		if c.hi < math.MaxInt32 {
			constrs = append(constrs, solver.LtEq(append([]int(nil), lits...), append([]int(nil), weights...), int(c.hi)))
		}
	}

	pb := solver.ParsePBConstrs(constrs)
	if pb.NbVars < s.nbLits {
		pb.NbVars = s.nbLits
	}
	if objLits, objWeights := s.objective.expr.expand(); len(objLits) > 0 {
		costLits := make([]solver.Lit, len(objLits))
		for i, l := range objLits {
			costLits[i] = solver.IntToLit(int32(l))
		}
		pb.SetCostFunc(costLits, objWeights)
	}

	engine := solver.New(pb)

	stop := make(chan struct{})
	timedOut := false
	if timeBudget > 0 {
		timer := time.AfterFunc(timeBudget, func() {
			timedOut = true
			close(stop)
		})
		defer timer.Stop()
	}

	res := engine.Optimal(nil, stop)
	switch res.Status {
	case solver.Sat:
		s.storeModel(res.Model)
		if timedOut {
			return Feasible, nil
		}
		return Optimal, nil
	case solver.Unsat:
		return Infeasible, nil
	default:
		return Infeasible, fmt.Errorf("solver stopped without a solution (budget %v)", timeBudget)
	}
}

func (s *SatSolver) storeModel(model []bool) {
	s.model = make([]bool, s.nbLits+1)
	for idx := 1; idx <= s.nbLits && idx-1 < len(model); idx++ {
		s.model[idx] = model[idx-1]
	}
	s.hasModel = true
}

// SolutionValue returns the value of v in the last solution.
func (s *SatSolver) SolutionValue(v Variable) float64 {
	if !s.hasModel {
		return 0
	}
	sv := v.(*satVar)
	count := 0
	for _, lit := range sv.lits {
		if s.model[lit] {
			count++
		}
	}
	return float64(count)
}

func unitWeights(n int) []int {
	weights := make([]int, n)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}
