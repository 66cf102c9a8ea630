package pattern

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/wbrown/janus-hypergraph/hypergraph"
)

// Parse reads the line-oriented pattern syntax used by tests and the
// hyperplan CLI:
//
//	# people employed by a company founded before 2000
//	thing $p types=person
//	thing $c types=company where=<2000
//	type  $t label=person
//	edge  $p employment $c
//	edge  $p isa $t
//
// Vertex lines: "thing <var> [iid=<hex>] [types=<a,b,...>] [where=<op><value>]"
// and "type <var> [label=<name>] [abstract] [value=<vt>] [regex=<re>]".
// Edge lines: "edge <from> <label> <to>". Variables are written with or
// without a leading '$'. '#' starts a comment; blank lines are skipped.
func Parse(input string) (*Pattern, error) {
	p := New()
	for lineNo, raw := range strings.Split(input, "\n") {
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "thing":
			err = parseThing(p, fields[1:])
		case "type":
			err = parseType(p, fields[1:])
		case "edge":
			err = parseEdge(p, fields[1:])
		default:
			err = fmt.Errorf("unknown declaration %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
	return p, nil
}

func parseThing(p *Pattern, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("thing declaration needs a variable")
	}
	v, err := p.Thing(parseVar(fields[0]))
	if err != nil {
		return err
	}
	for _, field := range fields[1:] {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("malformed property %q", field)
		}
		switch key {
		case "iid":
			iid, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
			if err != nil {
				return fmt.Errorf("malformed iid %q: %w", val, err)
			}
			v.Thing.IID = iid
		case "types":
			v.Thing.Types = append(v.Thing.Types, strings.Split(val, ",")...)
			v.Thing.Normalize()
		case "where":
			pred, err := parsePredicate(val)
			if err != nil {
				return err
			}
			v.Thing.Predicates = append(v.Thing.Predicates, pred)
		default:
			return fmt.Errorf("unknown thing property %q", key)
		}
	}
	return nil
}

func parseType(p *Pattern, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("type declaration needs a variable")
	}
	v, err := p.Type(parseVar(fields[0]))
	if err != nil {
		return err
	}
	for _, field := range fields[1:] {
		if field == "abstract" {
			v.Type.IsAbstract = true
			continue
		}
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("malformed property %q", field)
		}
		switch key {
		case "label":
			v.Type.Label = val
		case "value":
			v.Type.ValueType = val
		case "regex":
			v.Type.Regex = val
		default:
			return fmt.Errorf("unknown type property %q", key)
		}
	}
	return nil
}

func parseEdge(p *Pattern, fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("edge declaration needs: edge <from> <label> <to>")
	}
	return p.Edge(parseVar(fields[0]), parseVar(fields[2]), fields[1])
}

func parseVar(s string) hypergraph.Identifier {
	return hypergraph.NewVariable(strings.TrimPrefix(s, "$"))
}

// predicate operators, longest first so "<=" wins over "<"
var predicateOps = []struct {
	text string
	op   hypergraph.PredicateOp
}{
	{"!=", hypergraph.OpNEQ},
	{"<=", hypergraph.OpLTE},
	{">=", hypergraph.OpGTE},
	{"=", hypergraph.OpEQ},
	{"<", hypergraph.OpLT},
	{">", hypergraph.OpGT},
	{"like:", hypergraph.OpLike},
}

func parsePredicate(s string) (hypergraph.Predicate, error) {
	for _, cand := range predicateOps {
		if strings.HasPrefix(s, cand.text) {
			value := s[len(cand.text):]
			if value == "" {
				return hypergraph.Predicate{}, fmt.Errorf("predicate %q has no value", s)
			}
			return hypergraph.Predicate{Op: cand.op, Value: value}, nil
		}
	}
	return hypergraph.Predicate{}, fmt.Errorf("predicate %q has no comparison operator", s)
}
