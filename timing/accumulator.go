package timing

import (
	"github.com/sarchlab/cohsim/quantity"
)

// Event is an operation kind with its unit cost and the number of times it
// occurred.
type Event struct {
	Op    Op
	Cost  quantity.Time
	Count uint64
}

// Total returns cost times count.
func (e Event) Total() quantity.Time {
	return e.Cost.Mul(e.Count)
}

// Accumulator collects the events of a single access. Events are kept in the
// order they were first recorded.
type Accumulator struct {
	events []Event
	index  [numOps]int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{}
	a.Reset()

	return a
}

// Record counts one occurrence of the operation. The cost of the first
// occurrence is kept.
func (a *Accumulator) Record(op Op, cost quantity.Time) {
	mustBeValidOp(op)

	if i := a.index[op]; i >= 0 {
		a.events[i].Count++
		return
	}

	a.index[op] = len(a.events)
	a.events = append(a.events, Event{Op: op, Cost: cost, Count: 1})
}

// Count returns how many times the operation was recorded.
func (a *Accumulator) Count(op Op) uint64 {
	mustBeValidOp(op)

	if i := a.index[op]; i >= 0 {
		return a.events[i].Count
	}

	return 0
}

// Events returns a copy of the recorded events.
func (a *Accumulator) Events() []Event {
	events := make([]Event, len(a.events))
	copy(events, a.events)

	return events
}

// Total sums the cost of every event. See Sum.
func (a *Accumulator) Total() quantity.Time {
	return Sum(a.events)
}

// Reset forgets all the events.
func (a *Accumulator) Reset() {
	a.events = a.events[:0]
	for i := range a.index {
		a.index[i] = -1
	}
}

// Sum adds up cost times count over the events. Costs are normalized before
// they are added. The result keeps the unit of the events when they all agree
// and is in nanoseconds otherwise.
func Sum(events []Event) quantity.Time {
	if len(events) == 0 {
		return quantity.NewTime(0, quantity.NS)
	}

	unit := events[0].Cost.Unit
	var ns uint64

	for _, e := range events {
		if e.Cost.Unit != unit {
			unit = quantity.NS
		}

		ns += e.Total().Nanoseconds()
	}

	return quantity.NewTime(ns, quantity.NS).In(unit)
}
