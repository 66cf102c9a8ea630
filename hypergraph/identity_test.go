package hypergraph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierString(t *testing.T) {
	assert.Equal(t, "$x", NewVariable("x").String())
	assert.Equal(t, "$_0", NewAnonymous(0).String())
	assert.Equal(t, "$_7", NewAnonymous(7).String())
}

func TestIdentifierCompare(t *testing.T) {
	a := NewVariable("a")
	b := NewVariable("b")
	anon0 := NewAnonymous(0)
	anon1 := NewAnonymous(1)

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(NewVariable("a")))

	// Anonymous identifiers sort after all named ones.
	assert.Negative(t, b.Compare(anon0))
	assert.Negative(t, anon0.Compare(anon1))
}

func TestIdentifierSortOrder(t *testing.T) {
	ids := []Identifier{NewAnonymous(1), NewVariable("z"), NewAnonymous(0), NewVariable("a")}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })

	assert.Equal(t, []Identifier{
		NewVariable("a"), NewVariable("z"), NewAnonymous(0), NewAnonymous(1),
	}, ids)
}

func TestIdentifierEqualAndMapKey(t *testing.T) {
	assert.True(t, NewVariable("x").Equal(NewVariable("x")))
	assert.False(t, NewVariable("x").Equal(NewAnonymous(0)))

	m := map[Identifier]int{
		NewVariable("x"): 1,
		NewAnonymous(0):  2,
	}
	assert.Equal(t, 1, m[NewVariable("x")])
	assert.Equal(t, 2, m[NewAnonymous(0)])
}

func TestIdentifierAnonymous(t *testing.T) {
	assert.True(t, NewAnonymous(3).IsAnonymous())
	assert.False(t, NewVariable("x").IsAnonymous())
}
