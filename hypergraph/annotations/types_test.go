package annotations

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorDisabledWithoutHandler(t *testing.T) {
	c := NewCollector(nil)
	assert.False(t, c.Enabled())

	c.Add(Event{Name: PlanInvoked})
	assert.Empty(t, c.Events())

	var nilC *Collector
	assert.False(t, nilC.Enabled())
	assert.Nil(t, nilC.Events())
	nilC.Reset()
}

func TestCollectorRecordsAndForwards(t *testing.T) {
	var received []Event
	c := NewCollector(func(e Event) { received = append(received, e) })
	require.True(t, c.Enabled())

	start := time.Now()
	c.AddTiming(SolveBegin, start, map[string]interface{}{"budget": time.Second})
	c.AddTiming(SolveCompleted, start, nil)

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, SolveBegin, events[0].Name)
	assert.Equal(t, SolveCompleted, events[1].Name)
	assert.GreaterOrEqual(t, events[0].Latency, time.Duration(0))

	require.Len(t, received, 2)

	c.Reset()
	assert.Empty(t, c.Events())
}

func TestCollectorConcurrentAdd(t *testing.T) {
	c := NewCollector(func(Event) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add(Event{Name: PlanGraphBuilt})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Events(), 800)
}

func TestFormatterEvents(t *testing.T) {
	var sb strings.Builder
	f := NewOutputFormatter(&sb)

	out := f.Format(Event{
		Name:    PlanGraphBuilt,
		Latency: 3 * time.Millisecond,
		Data:    map[string]interface{}{"vertices": 4, "edges": 2},
	})
	assert.Contains(t, out, "4 vertices")
	assert.Contains(t, out, "2 edges")
	assert.Contains(t, out, "ms]")

	out = f.Format(Event{
		Name:    SolveCompleted,
		Latency: 250 * time.Microsecond,
		Data:    map[string]interface{}{"result": "optimal"},
	})
	assert.Contains(t, out, "optimal")
	assert.Contains(t, out, "µs]")

	out = f.Format(Event{
		Name: ErrorInfeasible,
		Data: map[string]interface{}{"error": "no indexable root"},
	})
	assert.Contains(t, out, "no indexable root")
}

func TestFormatterTruncatesPattern(t *testing.T) {
	var sb strings.Builder
	f := NewOutputFormatter(&sb)

	long := strings.Repeat("thing $x types=person ", 20)
	out := f.Format(Event{Name: PlanInvoked, Data: map[string]interface{}{"pattern": long}})
	assert.LessOrEqual(t, len(out), 120)
	assert.Contains(t, out, "...")
}

func TestFormatterHandleWrites(t *testing.T) {
	var sb strings.Builder
	f := NewOutputFormatter(&sb)

	f.Handle(Event{Name: PlanCacheHit, Data: map[string]interface{}{"epoch": uint64(3)}})
	assert.Contains(t, sb.String(), "cached plan reused")
	assert.Contains(t, sb.String(), "3")
}
