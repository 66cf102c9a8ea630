// Package hypergraph holds the shared vocabulary of the traversal
// planner: pattern variable identifiers, vertex kinds, and the typed
// property bags attached to pattern vertices.
package hypergraph

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// VertexKind discriminates the two pattern vertex variants.
type VertexKind uint8

const (
	// ThingVertex is an instance-level variable (an entity, relation,
	// or attribute instance in the stored graph).
	ThingVertex VertexKind = iota
	// TypeVertex is a schema-level variable.
	TypeVertex
)

// String returns the string representation of VertexKind.
func (k VertexKind) String() string {
	switch k {
	case ThingVertex:
		return "thing"
	case TypeVertex:
		return "type"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// PredicateOp is a comparison operator appearing in a value predicate.
type PredicateOp uint8

const (
	OpEQ PredicateOp = iota
	OpNEQ
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpLike
)

// String returns the operator in query syntax.
func (op PredicateOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNEQ:
		return "!="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLike:
		return "like"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// IsEquality reports whether the operator is an exact-match comparison.
// Equality predicates can be answered by index lookup rather than scan,
// which the objective builder rewards.
func (op PredicateOp) IsEquality() bool {
	return op == OpEQ
}

// Predicate is a value comparison attached to a Thing vertex.
type Predicate struct {
	Op    PredicateOp
	Value string
}

// String returns the predicate in query syntax.
func (p Predicate) String() string {
	return fmt.Sprintf("%s %s", p.Op, p.Value)
}

// ThingProperties carries the constraints attached to an instance-level
// pattern variable.
type ThingProperties struct {
	IID        []byte      // explicit instance handle, nil when absent
	Types      []string    // candidate type labels, sorted
	Predicates []Predicate // value predicates
}

// HasIID reports whether an explicit instance handle is present.
func (p ThingProperties) HasIID() bool {
	return len(p.IID) > 0
}

// HasEqualityPredicate reports whether any attached predicate is an
// exact-match comparison.
func (p ThingProperties) HasEqualityPredicate() bool {
	for _, pred := range p.Predicates {
		if pred.Op.IsEquality() {
			return true
		}
	}
	return false
}

// Normalize sorts and deduplicates the candidate type labels.
func (p *ThingProperties) Normalize() {
	sort.Strings(p.Types)
	p.Types = dedupeSorted(p.Types)
}

// String returns a compact representation for diagnostics.
func (p ThingProperties) String() string {
	var parts []string
	if p.HasIID() {
		parts = append(parts, "iid="+hex.EncodeToString(p.IID))
	}
	if len(p.Types) > 0 {
		parts = append(parts, "types="+strings.Join(p.Types, ","))
	}
	for _, pred := range p.Predicates {
		parts = append(parts, pred.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// TypeProperties carries the constraints attached to a schema-level
// pattern variable.
type TypeProperties struct {
	Label      string // concrete type label, empty when absent
	IsAbstract bool
	ValueType  string // attribute value type constraint, empty when absent
	Regex      string // attribute regex constraint, empty when absent
}

// HasLabel reports whether a concrete label is present.
func (p TypeProperties) HasLabel() bool {
	return p.Label != ""
}

// String returns a compact representation for diagnostics.
func (p TypeProperties) String() string {
	var parts []string
	if p.HasLabel() {
		parts = append(parts, "label="+p.Label)
	}
	if p.IsAbstract {
		parts = append(parts, "abstract")
	}
	if p.ValueType != "" {
		parts = append(parts, "value="+p.ValueType)
	}
	if p.Regex != "" {
		parts = append(parts, "regex="+p.Regex)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func dedupeSorted(in []string) []string {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
