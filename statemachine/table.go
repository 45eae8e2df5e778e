package statemachine

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/enum"
)

// table is the dense transition table: one cell per (state, event) pair, laid out
// row-major by state. A cell holds the target state or the state sentinel.
type table[S enum.Enum[S], E enum.Enum[E]] struct {
	cells    []S
	events   int
	sentinel S
}

func newTable[S enum.Enum[S], E enum.Enum[E]]() table[S, E] {
	t := table[S, E]{
		cells:    make([]S, enum.Count[S]()*enum.Count[E]()),
		events:   enum.Count[E](),
		sentinel: enum.Sentinel[S](),
	}

	t.reset()

	return t
}

func (t *table[S, E]) index(state S, event E) int {
	mustBeValid("state", state)
	mustBeValid("event", event)

	return enum.Index(state)*t.events + enum.Index(event)
}

func (t *table[S, E]) get(state S, event E) S {
	return t.cells[t.index(state, event)]
}

// set stores next, which must be a real state or the sentinel.
func (t *table[S, E]) set(state S, event E, next S) {
	if next != t.sentinel {
		mustBeValid("state", next)
	}

	t.cells[t.index(state, event)] = next
}

func (t *table[S, E]) reset() {
	for i := range t.cells {
		t.cells[i] = t.sentinel
	}
}

// mustBeValid panics on values outside the enumeration. Unchecked, they would alias
// another row of the table or another phase's callback list.
func mustBeValid[T enum.Enum[T]](kind string, v T) {
	if !enum.Valid(v) {
		panic(fmt.Sprintf("statemachine: %s %d out of range", kind, enum.Index(v)))
	}
}
