package planner

import (
	"fmt"
	"sort"

	"github.com/wbrown/janus-hypergraph/hypergraph"
	"github.com/wbrown/janus-hypergraph/hypergraph/pattern"
)

// addVertex returns the vertex registered for id, creating it on first
// use. Re-adding with a different kind fails.
func (p *Planner) addVertex(id hypergraph.Identifier, kind hypergraph.VertexKind) (*Vertex, error) {
	if v, ok := p.vertices[id]; ok {
		if v.kind != kind {
			return nil, fmt.Errorf("%w: %s added as %s, then as %s", ErrInconsistentVertexKind, id, v.kind, kind)
		}
		return v, nil
	}
	v := newVertex(id, kind, p)
	p.vertices[id] = v
	return v, nil
}

// AddThing registers an instance-level vertex.
func (p *Planner) AddThing(id hypergraph.Identifier) (*Vertex, error) {
	return p.addVertex(id, hypergraph.ThingVertex)
}

// AddType registers a schema-level vertex.
func (p *Planner) AddType(id hypergraph.Identifier) (*Vertex, error) {
	return p.addVertex(id, hypergraph.TypeVertex)
}

// AddEdge reifies an undirected pattern edge between two registered
// vertices as a forward/backward directional pair and registers both
// directions on both endpoints' adjacency lists.
func (p *Planner) AddEdge(from, to hypergraph.Identifier, label string) (*Edge, error) {
	u, ok := p.vertices[from]
	if !ok {
		return nil, fmt.Errorf("edge references unregistered vertex %s", from)
	}
	v, ok := p.vertices[to]
	if !ok {
		return nil, fmt.Errorf("edge references unregistered vertex %s", to)
	}
	e := newEdge(u, v, label)
	u.out(e)
	v.in(e)
	p.edges = append(p.edges, e)
	return e, nil
}

// Vertex returns the registered vertex for id, if any.
func (p *Planner) Vertex(id hypergraph.Identifier) (*Vertex, bool) {
	v, ok := p.vertices[id]
	return v, ok
}

// Vertices returns the registered vertices in identifier order. The
// stable ordering keeps variable numbering and decoded plans
// deterministic across runs.
func (p *Planner) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(p.vertices))
	for _, v := range p.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].id.Compare(out[j].id) < 0
	})
	return out
}

// Edges returns the reified edges in registration order.
func (p *Planner) Edges() []*Edge { return p.edges }

// populate replays a pattern into the planner graph: one planner
// vertex per pattern variable with its properties, one reified edge
// pair per pattern edge.
func (p *Planner) populate(pat *pattern.Pattern) error {
	for _, pv := range pat.Vertices() {
		switch pv.Kind {
		case hypergraph.ThingVertex:
			v, err := p.AddThing(pv.ID)
			if err != nil {
				return err
			}
			if err := v.SetThingProperties(*pv.Thing); err != nil {
				return err
			}
		case hypergraph.TypeVertex:
			v, err := p.AddType(pv.ID)
			if err != nil {
				return err
			}
			if err := v.SetTypeProperties(*pv.Type); err != nil {
				return err
			}
		}
	}
	for _, pe := range pat.Edges() {
		if _, err := p.AddEdge(pe.From, pe.To, pe.Label); err != nil {
			return err
		}
	}
	return nil
}
