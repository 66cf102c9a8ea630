package planner

import (
	"github.com/wbrown/janus-hypergraph/hypergraph"
	"github.com/wbrown/janus-hypergraph/hypergraph/milp"
	"github.com/wbrown/janus-hypergraph/hypergraph/schema"
)

// Edge reifies one undirected pattern edge as a pair of directional
// candidates. The solver picks at most one of the two directions; the
// unselected direction simply never appears in the decoded plan.
type Edge struct {
	from  *Vertex
	to    *Vertex
	label string

	forward  *Directional
	backward *Directional
}

func newEdge(from, to *Vertex, label string) *Edge {
	e := &Edge{from: from, to: to, label: label}
	e.forward = &Directional{from: from, to: to, label: label}
	e.backward = &Directional{from: to, to: from, label: label}
	return e
}

// From returns the vertex the pattern edge was declared from.
func (e *Edge) From() *Vertex { return e.from }

// To returns the vertex the pattern edge was declared to.
func (e *Edge) To() *Vertex { return e.to }

// Label returns the edge label.
func (e *Edge) Label() string { return e.label }

// Forward returns the declared direction.
func (e *Edge) Forward() *Directional { return e.forward }

// Backward returns the reversed direction.
func (e *Edge) Backward() *Directional { return e.backward }

func (e *Edge) initialiseVariables(solver milp.Solver) {
	e.forward.initialiseVariables(solver)
	e.backward.initialiseVariables(solver)
}

// initialiseConstraints forbids selecting both directions of the same
// pattern edge. The vertex flow constraints alone would tolerate a
// two-cycle between a pair of vertices; this rules it out.
func (e *Edge) initialiseConstraints(solver milp.Solver) {
	con := solver.MakeConstraint(0, 1, "edge::con::"+e.forward.name()+"::one_direction")
	con.SetCoefficient(e.forward.varIsSelected, 1)
	con.SetCoefficient(e.backward.varIsSelected, 1)
}

func (e *Edge) updateObjective(objective milp.Objective, graph schema.Graph) {
	e.forward.updateObjective(objective, graph)
	e.backward.updateObjective(objective, graph)
}

func (e *Edge) recordValues(solver milp.Solver) {
	e.forward.recordValues(solver)
	e.backward.recordValues(solver)
}

// Directional is one traversal direction of a reified edge, carrying
// its own selection variable and decoded value.
type Directional struct {
	from  *Vertex
	to    *Vertex
	label string

	varIsSelected   milp.Variable
	valueIsSelected int

	isInitialisedVariables bool
}

// From returns the direction's source vertex.
func (d *Directional) From() *Vertex { return d.from }

// To returns the direction's target vertex.
func (d *Directional) To() *Vertex { return d.to }

// Label returns the edge label.
func (d *Directional) Label() string { return d.label }

func (d *Directional) name() string {
	return d.from.id.String() + "::" + d.label + "::" + d.to.id.String()
}

func (d *Directional) initialiseVariables(solver milp.Solver) {
	d.varIsSelected = solver.MakeIntVar(0, 1, "edge::var::"+d.name()+"::is_selected")
	d.isInitialisedVariables = true
}

// updateObjective sets the cost of traversing this direction: one unit
// for following the index, plus an estimate of how many target
// candidates the expansion yields. Targets pinned by an IID or a label
// expand to a single candidate, so only the base unit remains.
func (d *Directional) updateObjective(objective milp.Objective, graph schema.Graph) {
	objective.SetCoefficient(d.varIsSelected, 1+d.expansionEstimate(graph))
}

// expansionEstimate approximates the per-source fan-out of following
// the edge towards the target vertex.
func (d *Directional) expansionEstimate(graph schema.Graph) int64 {
	switch d.to.kind {
	case hypergraph.ThingVertex:
		props := d.to.thing
		if props != nil && props.HasIID() {
			return 0
		}
		estimate := graph.EdgeEstimate(d.label)
		if props != nil && len(props.Types) > 0 {
			var count uint64
			for _, label := range props.Types {
				if t, ok := graph.GetType(label); ok {
					count += t.InstanceCount()
				}
			}
			if count < estimate {
				estimate = count
			}
		}
		return clampCount(estimate)
	case hypergraph.TypeVertex:
		props := d.to.typ
		if props != nil && props.HasLabel() {
			return 0
		}
		return clampCount(graph.EdgeEstimate(d.label))
	default:
		return clampCount(graph.EdgeEstimate(d.label))
	}
}

func (d *Directional) recordValues(solver milp.Solver) {
	d.valueIsSelected = round(solver.SolutionValue(d.varIsSelected))
}

// IsSelected reports the decoded selection flag.
func (d *Directional) IsSelected() bool { return d.valueIsSelected == 1 }
