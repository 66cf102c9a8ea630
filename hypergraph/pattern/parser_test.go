package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-hypergraph/hypergraph"
)

func TestParseBasicPattern(t *testing.T) {
	pat, err := Parse(`
		# a person working at a company
		thing $p types=person
		thing $c types=company where=<2000
		edge $p employment $c
	`)
	require.NoError(t, err)

	vertices := pat.Vertices()
	require.Len(t, vertices, 2)

	c := vertices[0]
	assert.Equal(t, hypergraph.NewVariable("c"), c.ID)
	assert.Equal(t, []string{"company"}, c.Thing.Types)
	require.Len(t, c.Thing.Predicates, 1)
	assert.Equal(t, hypergraph.OpLT, c.Thing.Predicates[0].Op)
	assert.Equal(t, "2000", c.Thing.Predicates[0].Value)

	p := vertices[1]
	assert.Equal(t, hypergraph.NewVariable("p"), p.ID)
	assert.Equal(t, []string{"person"}, p.Thing.Types)

	edges := pat.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "employment", edges[0].Label)
}

func TestParseIID(t *testing.T) {
	pat, err := Parse(`thing $x iid=0xab12`)
	require.NoError(t, err)

	v, ok := pat.Lookup(hypergraph.NewVariable("x"))
	require.True(t, ok)
	assert.Equal(t, []byte{0xab, 0x12}, v.Thing.IID)
}

func TestParseTypeVertex(t *testing.T) {
	pat, err := Parse(`type $t label=person abstract value=string regex=[a-z]+`)
	require.NoError(t, err)

	v, ok := pat.Lookup(hypergraph.NewVariable("t"))
	require.True(t, ok)
	require.NotNil(t, v.Type)
	assert.Equal(t, "person", v.Type.Label)
	assert.True(t, v.Type.IsAbstract)
	assert.Equal(t, "string", v.Type.ValueType)
	assert.Equal(t, "[a-z]+", v.Type.Regex)
}

func TestParsePredicateOperators(t *testing.T) {
	cases := []struct {
		in string
		op hypergraph.PredicateOp
	}{
		{"where==alice", hypergraph.OpEQ},
		{"where=!=alice", hypergraph.OpNEQ},
		{"where=<10", hypergraph.OpLT},
		{"where=<=10", hypergraph.OpLTE},
		{"where=>10", hypergraph.OpGT},
		{"where=>=10", hypergraph.OpGTE},
		{"where=like:^a.*", hypergraph.OpLike},
	}
	for _, tc := range cases {
		pat, err := Parse("thing $x " + tc.in)
		require.NoError(t, err, tc.in)
		v, _ := pat.Lookup(hypergraph.NewVariable("x"))
		require.Len(t, v.Thing.Predicates, 1, tc.in)
		assert.Equal(t, tc.op, v.Thing.Predicates[0].Op, tc.in)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"frob $x",
		"thing",
		"thing $x iid=zz",
		"thing $x where=10",
		"thing $x unknown=1",
		"edge $x knows",
		"edge $x knows $y",
		"type $t label=a\nthing $t",
	}
	for _, input := range cases {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestKindConflict(t *testing.T) {
	p := New()
	_, err := p.Thing(hypergraph.NewVariable("x"))
	require.NoError(t, err)
	_, err = p.Type(hypergraph.NewVariable("x"))
	assert.Error(t, err)
}

func TestEdgeRequiresDeclaredVariables(t *testing.T) {
	p := New()
	_, err := p.Thing(hypergraph.NewVariable("x"))
	require.NoError(t, err)
	err = p.Edge(hypergraph.NewVariable("x"), hypergraph.NewVariable("ghost"), "knows")
	assert.Error(t, err)
}

func TestKeyStability(t *testing.T) {
	build := func() *Pattern {
		pat, err := Parse(`
			thing $a types=person
			thing $b types=company
			edge $a employment $b
		`)
		require.NoError(t, err)
		return pat
	}
	assert.Equal(t, build().Key(), build().Key())

	// Edge declaration order must not change the key.
	first, err := Parse("thing $a\nthing $b\nedge $a x $b\nedge $b y $a")
	require.NoError(t, err)
	second, err := Parse("thing $a\nthing $b\nedge $b y $a\nedge $a x $b")
	require.NoError(t, err)
	assert.Equal(t, first.Key(), second.Key())
}

func TestKeyDistinguishesProperties(t *testing.T) {
	withIID, err := Parse("thing $a iid=ab")
	require.NoError(t, err)
	without, err := Parse("thing $a")
	require.NoError(t, err)
	assert.NotEqual(t, withIID.Key(), without.Key())
}

func TestVerticesSorted(t *testing.T) {
	pat, err := Parse("thing $z\nthing $a\nthing $m")
	require.NoError(t, err)
	vertices := pat.Vertices()
	require.Len(t, vertices, 3)
	assert.Equal(t, hypergraph.NewVariable("a"), vertices[0].ID)
	assert.Equal(t, hypergraph.NewVariable("m"), vertices[1].ID)
	assert.Equal(t, hypergraph.NewVariable("z"), vertices[2].ID)
}
