package planner

import (
	"fmt"
	"sort"

	"github.com/gammazero/deque"

	"github.com/wbrown/janus-hypergraph/hypergraph"
)

// PlanEdge is one selected directional edge of a decoded plan.
type PlanEdge struct {
	From  hypergraph.Identifier
	To    hypergraph.Identifier
	Label string
}

// Plan is the decoded traversal plan: the indexed roots to start from,
// a breadth-first visit order over all pattern variables, and the
// selected edge directions. The execution engine consumes Order
// directly.
type Plan struct {
	Roots []hypergraph.Identifier
	Order []hypergraph.Identifier
	Edges []PlanEdge
}

// decode reads the solved flags into a Plan. Every vertex must be
// reachable from a root along selected edges; a shortfall means the
// model and its decoding disagree, which is an internal bug.
func (p *Planner) decode() (*Plan, error) {
	plan := &Plan{}
	ordered := p.Vertices()

	var frontier deque.Deque[*Vertex]
	visited := make(map[hypergraph.Identifier]bool, len(ordered))

	for _, v := range ordered {
		if v.IsStartingVertex() {
			plan.Roots = append(plan.Roots, v.id)
			frontier.PushBack(v)
			visited[v.id] = true
		}
	}

	for frontier.Len() > 0 {
		v := frontier.PopFront()
		plan.Order = append(plan.Order, v.id)

		selected := make([]*Directional, 0, len(v.outs))
		for _, d := range v.outs {
			if d.IsSelected() {
				selected = append(selected, d)
			}
		}
		sort.Slice(selected, func(i, j int) bool {
			if c := selected[i].to.id.Compare(selected[j].to.id); c != 0 {
				return c < 0
			}
			return selected[i].label < selected[j].label
		})

		for _, d := range selected {
			plan.Edges = append(plan.Edges, PlanEdge{From: d.from.id, To: d.to.id, Label: d.label})
			if !visited[d.to.id] {
				visited[d.to.id] = true
				frontier.PushBack(d.to)
			}
		}
	}

	if len(plan.Order) != len(ordered) {
		return nil, fmt.Errorf("%w: decoded %d of %d vertices", ErrSolverFailure, len(plan.Order), len(ordered))
	}
	return plan, nil
}
