package planner

import (
	"fmt"
	"math"

	"github.com/wbrown/janus-hypergraph/hypergraph"
	"github.com/wbrown/janus-hypergraph/hypergraph/milp"
	"github.com/wbrown/janus-hypergraph/hypergraph/schema"
)

// Vertex is a planner-internal reification of one pattern variable. It
// carries the MILP decision variables that decide whether the vertex
// roots the traversal, and their decoded values after solving.
//
// The two pattern vertex kinds share this struct; exactly one of the
// thing/typ property bags is populated once properties are set. Kind
// mismatches surface as ErrIllegalCast from the view accessors.
type Vertex struct {
	id      hypergraph.Identifier
	kind    hypergraph.VertexKind
	planner *Planner

	thing         *hypergraph.ThingProperties
	typ           *hypergraph.TypeProperties
	propertiesSet bool
	hasIndex      bool

	ins  []*Directional
	outs []*Directional

	varIsStartingVertex        milp.Variable
	varIsEndingVertex          milp.Variable
	varHasIncomingEdges        milp.Variable
	varHasOutgoingEdges        milp.Variable
	varUnselectedIncomingEdges milp.Variable
	varUnselectedOutgoingEdges milp.Variable

	valueIsStartingVertex int
	valueIsEndingVertex   int
	valueHasIncomingEdges int
	valueHasOutgoingEdges int

	isInitialisedVariables   bool
	isInitialisedConstraints bool
}

func newVertex(id hypergraph.Identifier, kind hypergraph.VertexKind, planner *Planner) *Vertex {
	v := &Vertex{id: id, kind: kind, planner: planner}
	// Type vertices are always resolvable through the schema index.
	if kind == hypergraph.TypeVertex {
		v.hasIndex = true
	}
	return v
}

// ID returns the vertex identifier.
func (v *Vertex) ID() hypergraph.Identifier { return v.id }

// Kind returns the vertex kind.
func (v *Vertex) Kind() hypergraph.VertexKind { return v.kind }

// HasIndex reports whether the vertex may be used as a traversal
// starting point.
func (v *Vertex) HasIndex() bool { return v.hasIndex }

// IsThing reports whether this is an instance-level vertex.
func (v *Vertex) IsThing() bool { return v.kind == hypergraph.ThingVertex }

// IsType reports whether this is a schema-level vertex.
func (v *Vertex) IsType() bool { return v.kind == hypergraph.TypeVertex }

// Thing returns the Thing property view.
func (v *Vertex) Thing() (*hypergraph.ThingProperties, error) {
	if v.kind != hypergraph.ThingVertex {
		return nil, fmt.Errorf("%w: %s vertex %s viewed as thing", ErrIllegalCast, v.kind, v.id)
	}
	return v.thing, nil
}

// Type returns the Type property view.
func (v *Vertex) Type() (*hypergraph.TypeProperties, error) {
	if v.kind != hypergraph.TypeVertex {
		return nil, fmt.Errorf("%w: %s vertex %s viewed as type", ErrIllegalCast, v.kind, v.id)
	}
	return v.typ, nil
}

// SetThingProperties attaches the property bag to a Thing vertex and
// derives hasIndex. Properties may be set at most once.
func (v *Vertex) SetThingProperties(props hypergraph.ThingProperties) error {
	if v.kind != hypergraph.ThingVertex {
		return fmt.Errorf("%w: thing properties on %s vertex %s", ErrIllegalCast, v.kind, v.id)
	}
	if v.propertiesSet {
		return fmt.Errorf("%w: %s", ErrPropertiesAlreadySet, v.id)
	}
	props.Normalize()
	v.thing = &props
	v.propertiesSet = true
	v.hasIndex = props.HasIID() || len(props.Types) > 0
	return nil
}

// SetTypeProperties attaches the property bag to a Type vertex.
// Properties may be set at most once; hasIndex stays true.
func (v *Vertex) SetTypeProperties(props hypergraph.TypeProperties) error {
	if v.kind != hypergraph.TypeVertex {
		return fmt.Errorf("%w: type properties on %s vertex %s", ErrIllegalCast, v.kind, v.id)
	}
	if v.propertiesSet {
		return fmt.Errorf("%w: %s", ErrPropertiesAlreadySet, v.id)
	}
	v.typ = &props
	v.propertiesSet = true
	return nil
}

// Ins returns the incoming directional edges.
func (v *Vertex) Ins() []*Directional { return v.ins }

// Outs returns the outgoing directional edges.
func (v *Vertex) Outs() []*Directional { return v.outs }

// out registers a reified edge whose forward direction leaves this
// vertex. The backward direction then enters it.
func (v *Vertex) out(e *Edge) {
	v.outs = append(v.outs, e.forward)
	v.ins = append(v.ins, e.backward)
}

// in registers a reified edge whose forward direction enters this
// vertex. The backward direction then leaves it.
func (v *Vertex) in(e *Edge) {
	v.ins = append(v.ins, e.forward)
	v.outs = append(v.outs, e.backward)
}

func (v *Vertex) varPrefix() string { return "vertex::var::" + v.id.String() + "::" }
func (v *Vertex) conPrefix() string { return "vertex::con::" + v.id.String() + "::" }

// initialiseVariables creates the vertex's decision variables. A vertex
// without an index never gets a starting variable; the symbol is
// treated as constant zero everywhere it would appear.
func (v *Vertex) initialiseVariables(solver milp.Solver) {
	if v.hasIndex {
		v.varIsStartingVertex = solver.MakeIntVar(0, 1, v.varPrefix()+"is_starting_vertex")
	}
	v.varIsEndingVertex = solver.MakeIntVar(0, 1, v.varPrefix()+"is_ending_vertex")
	v.varHasIncomingEdges = solver.MakeIntVar(0, 1, v.varPrefix()+"has_incoming_edges")
	v.varHasOutgoingEdges = solver.MakeIntVar(0, 1, v.varPrefix()+"has_outgoing_edges")

	v.isInitialisedVariables = true
}

// initialiseConstraints adds the vertex's constraints. Requires the
// variables of the vertex and of all its edges to exist already.
func (v *Vertex) initialiseConstraints(solver milp.Solver) error {
	if !v.isInitialisedVariables {
		return fmt.Errorf("%w: vertex %s", ErrConstraintsBeforeVariables, v.id)
	}
	for _, e := range v.ins {
		if !e.isInitialisedVariables {
			return fmt.Errorf("%w: edge %s of vertex %s", ErrConstraintsBeforeVariables, e.name(), v.id)
		}
	}
	for _, e := range v.outs {
		if !e.isInitialisedVariables {
			return fmt.Errorf("%w: edge %s of vertex %s", ErrConstraintsBeforeVariables, e.name(), v.id)
		}
	}
	v.initialiseConstraintsForIncomingEdges(solver)
	v.initialiseConstraintsForOutgoingEdges(solver)
	v.initialiseConstraintsForVertexFlow(solver)
	v.isInitialisedConstraints = true
	return nil
}

// initialiseConstraintsForIncomingEdges forces the unselected counter
// to equal the number of incoming slots not chosen, and forces
// hasIncomingEdges whenever at least one incoming edge is selected. A
// vertex with no incoming slots has hasIncomingEdges pinned to zero.
func (v *Vertex) initialiseConstraintsForIncomingEdges(solver milp.Solver) {
	din := int64(len(v.ins))
	v.varUnselectedIncomingEdges = solver.MakeIntVar(0, len(v.ins), v.varPrefix()+"unselected_incoming_edges")

	if din == 0 {
		conNoIncoming := solver.MakeConstraint(0, 0, v.conPrefix()+"has_incoming_edges")
		conNoIncoming.SetCoefficient(v.varHasIncomingEdges, 1)
		return
	}

	conUnselected := solver.MakeConstraint(din, din, v.conPrefix()+"unselected_incoming_edges")
	conUnselected.SetCoefficient(v.varUnselectedIncomingEdges, 1)
	for _, e := range v.ins {
		conUnselected.SetCoefficient(e.varIsSelected, 1)
	}

	conHasIncoming := solver.MakeConstraint(1, din, v.conPrefix()+"has_incoming_edges")
	conHasIncoming.SetCoefficient(v.varUnselectedIncomingEdges, 1)
	conHasIncoming.SetCoefficient(v.varHasIncomingEdges, 1)
}

// initialiseConstraintsForOutgoingEdges mirrors the incoming-edge
// accounting on the outgoing side.
func (v *Vertex) initialiseConstraintsForOutgoingEdges(solver milp.Solver) {
	dout := int64(len(v.outs))
	v.varUnselectedOutgoingEdges = solver.MakeIntVar(0, len(v.outs), v.varPrefix()+"unselected_outgoing_edges")

	if dout == 0 {
		conNoOutgoing := solver.MakeConstraint(0, 0, v.conPrefix()+"has_outgoing_edges")
		conNoOutgoing.SetCoefficient(v.varHasOutgoingEdges, 1)
		return
	}

	conUnselected := solver.MakeConstraint(dout, dout, v.conPrefix()+"unselected_outgoing_edges")
	conUnselected.SetCoefficient(v.varUnselectedOutgoingEdges, 1)
	for _, e := range v.outs {
		conUnselected.SetCoefficient(e.varIsSelected, 1)
	}

	conHasOutgoing := solver.MakeConstraint(1, dout, v.conPrefix()+"has_outgoing_edges")
	conHasOutgoing.SetCoefficient(v.varUnselectedOutgoingEdges, 1)
	conHasOutgoing.SetCoefficient(v.varHasOutgoingEdges, 1)
}

// initialiseConstraintsForVertexFlow adds the entry, exit, and flow
// constraints. A vertex is entered exactly once (as a start or through
// an incoming edge) and exited exactly once (as an end or through an
// outgoing edge).
func (v *Vertex) initialiseConstraintsForVertexFlow(solver milp.Solver) {
	conStartOrIncoming := solver.MakeConstraint(1, 1, v.conPrefix()+"starting_or_incoming")
	if v.hasIndex {
		conStartOrIncoming.SetCoefficient(v.varIsStartingVertex, 1)
	}
	conStartOrIncoming.SetCoefficient(v.varHasIncomingEdges, 1)

	conEndingOrOutgoing := solver.MakeConstraint(1, 1, v.conPrefix()+"ending_or_outgoing")
	conEndingOrOutgoing.SetCoefficient(v.varIsEndingVertex, 1)
	conEndingOrOutgoing.SetCoefficient(v.varHasOutgoingEdges, 1)

	conVertexFlow := solver.MakeConstraint(0, 0, v.conPrefix()+"vertex_flow")
	if v.hasIndex {
		conVertexFlow.SetCoefficient(v.varIsStartingVertex, 1)
	}
	conVertexFlow.SetCoefficient(v.varHasIncomingEdges, 1)
	conVertexFlow.SetCoefficient(v.varIsEndingVertex, -1)
	conVertexFlow.SetCoefficient(v.varHasOutgoingEdges, -1)
}

// updateObjective sets the cost of choosing this vertex as a traversal
// root, from schema statistics. An IID is the cheapest possible start;
// candidate types with an equality predicate cost one lookup per type;
// candidate types without cost a scan of their instances. Type vertices
// cost one schema lookup when labelled, otherwise a scan over the type
// or attribute-type space.
func (v *Vertex) updateObjective(objective milp.Objective, graph schema.Graph) {
	if !v.hasIndex {
		return
	}
	switch v.kind {
	case hypergraph.ThingVertex:
		props := v.thing
		if props == nil {
			return
		}
		if props.HasIID() {
			objective.SetCoefficient(v.varIsStartingVertex, 1)
		} else if len(props.Types) > 0 {
			if props.HasEqualityPredicate() {
				objective.SetCoefficient(v.varIsStartingVertex, int64(len(props.Types)))
			} else {
				var count uint64
				for _, label := range props.Types {
					if t, ok := graph.GetType(label); ok {
						count += t.InstanceCount()
					}
				}
				objective.SetCoefficient(v.varIsStartingVertex, clampCount(count))
			}
		}
	case hypergraph.TypeVertex:
		props := v.typ
		if props == nil {
			return
		}
		if props.HasLabel() {
			objective.SetCoefficient(v.varIsStartingVertex, 1)
		} else if props.IsAbstract {
			objective.SetCoefficient(v.varIsStartingVertex, clampCount(graph.TypeCount()))
		} else if props.ValueType != "" || props.Regex != "" {
			objective.SetCoefficient(v.varIsStartingVertex, clampCount(graph.AttributeTypeCount()))
		}
	}
}

// recordValues decodes the solved variable values into plain integers.
func (v *Vertex) recordValues(solver milp.Solver) {
	if v.hasIndex {
		v.valueIsStartingVertex = round(solver.SolutionValue(v.varIsStartingVertex))
	} else {
		v.valueIsStartingVertex = 0
	}
	v.valueIsEndingVertex = round(solver.SolutionValue(v.varIsEndingVertex))
	v.valueHasIncomingEdges = round(solver.SolutionValue(v.varHasIncomingEdges))
	v.valueHasOutgoingEdges = round(solver.SolutionValue(v.varHasOutgoingEdges))
}

// IsStartingVertex reports the decoded starting flag.
func (v *Vertex) IsStartingVertex() bool { return v.valueIsStartingVertex == 1 }

// IsEndingVertex reports the decoded ending flag.
func (v *Vertex) IsEndingVertex() bool { return v.valueIsEndingVertex == 1 }

// HasIncomingEdges reports the decoded incoming flag.
func (v *Vertex) HasIncomingEdges() bool { return v.valueHasIncomingEdges == 1 }

// HasOutgoingEdges reports the decoded outgoing flag.
func (v *Vertex) HasOutgoingEdges() bool { return v.valueHasOutgoingEdges == 1 }

func round(f float64) int {
	return int(math.Round(f))
}

func clampCount(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}
