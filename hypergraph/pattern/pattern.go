// Package pattern models a normalized query pattern: a conjunction of
// typed vertices and undirected labelled edges with attached property
// predicates. Patterns are the planner's input; they carry no decision
// state of their own.
package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/janus-hypergraph/hypergraph"
)

// Vertex is one pattern variable with its accumulated properties.
// Exactly one of Thing/Type is non-nil, matching Kind.
type Vertex struct {
	ID    hypergraph.Identifier
	Kind  hypergraph.VertexKind
	Thing *hypergraph.ThingProperties
	Type  *hypergraph.TypeProperties
}

// Edge is one undirected labelled pattern edge.
type Edge struct {
	From  hypergraph.Identifier
	To    hypergraph.Identifier
	Label string
}

// Pattern is a conjunction of vertices and edges.
type Pattern struct {
	vertices []*Vertex
	edges    []Edge
	index    map[hypergraph.Identifier]*Vertex
}

// New creates an empty pattern.
func New() *Pattern {
	return &Pattern{index: make(map[hypergraph.Identifier]*Vertex)}
}

// Thing returns the Thing vertex for id, creating it on first use.
// Returns an error if id already names a Type vertex.
func (p *Pattern) Thing(id hypergraph.Identifier) (*Vertex, error) {
	if v, ok := p.index[id]; ok {
		if v.Kind != hypergraph.ThingVertex {
			return nil, fmt.Errorf("variable %s is a %s vertex, not a thing", id, v.Kind)
		}
		return v, nil
	}
	v := &Vertex{ID: id, Kind: hypergraph.ThingVertex, Thing: &hypergraph.ThingProperties{}}
	p.vertices = append(p.vertices, v)
	p.index[id] = v
	return v, nil
}

// Type returns the Type vertex for id, creating it on first use.
// Returns an error if id already names a Thing vertex.
func (p *Pattern) Type(id hypergraph.Identifier) (*Vertex, error) {
	if v, ok := p.index[id]; ok {
		if v.Kind != hypergraph.TypeVertex {
			return nil, fmt.Errorf("variable %s is a %s vertex, not a type", id, v.Kind)
		}
		return v, nil
	}
	v := &Vertex{ID: id, Kind: hypergraph.TypeVertex, Type: &hypergraph.TypeProperties{}}
	p.vertices = append(p.vertices, v)
	p.index[id] = v
	return v, nil
}

// Edge records an undirected labelled edge between two declared
// variables.
func (p *Pattern) Edge(from, to hypergraph.Identifier, label string) error {
	if _, ok := p.index[from]; !ok {
		return fmt.Errorf("edge references undeclared variable %s", from)
	}
	if _, ok := p.index[to]; !ok {
		return fmt.Errorf("edge references undeclared variable %s", to)
	}
	p.edges = append(p.edges, Edge{From: from, To: to, Label: label})
	return nil
}

// Vertices returns the pattern's vertices in identifier order. The
// stable ordering keeps downstream planning deterministic.
func (p *Pattern) Vertices() []*Vertex {
	out := append([]*Vertex(nil), p.vertices...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Compare(out[j].ID) < 0
	})
	return out
}

// Edges returns the pattern's edges in declaration order.
func (p *Pattern) Edges() []Edge {
	return append([]Edge(nil), p.edges...)
}

// Lookup returns the vertex declared for id, if any.
func (p *Pattern) Lookup(id hypergraph.Identifier) (*Vertex, bool) {
	v, ok := p.index[id]
	return v, ok
}

// Key returns a canonical textual form of the pattern structure, used
// as the plan cache key. Two patterns with equal keys plan identically
// under the same statistics epoch.
func (p *Pattern) Key() string {
	var sb strings.Builder
	for _, v := range p.Vertices() {
		sb.WriteString(v.Kind.String())
		sb.WriteByte(' ')
		sb.WriteString(v.ID.String())
		sb.WriteByte(' ')
		if v.Thing != nil {
			sb.WriteString(v.Thing.String())
		} else {
			sb.WriteString(v.Type.String())
		}
		sb.WriteByte('\n')
	}
	edges := p.Edges()
	lines := make([]string, len(edges))
	for i, e := range edges {
		lines[i] = fmt.Sprintf("edge %s %s %s", e.From, e.Label, e.To)
	}
	sort.Strings(lines)
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}
