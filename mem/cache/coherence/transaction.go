package coherence

import (
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/internal/tagging"
	"github.com/sarchlab/cohsim/quantity"
	"github.com/sarchlab/cohsim/timing"
)

// costs are the timings that do not belong to a single cache level.
type costs struct {
	replace   quantity.Time
	broadcast quantity.Time
	memory    quantity.Time
}

// transaction carries the bookkeeping of one access across the levels.
type transaction struct {
	req    Request
	chipID int
	owner  cache.Owner
	timing *timing.Accumulator
	l2Log  []cache.LineRecord
	l3Log  []cache.LineRecord
}

func (t *transaction) record(op timing.Op, cost quantity.Time) {
	t.timing.Record(op, cost)
}

func (t *transaction) logL2(block tagging.Block) {
	t.l2Log = append(t.l2Log, cache.LineRecord{
		SlotID: block.SlotID,
		State:  block.State,
	})
}

func (t *transaction) logL3(block tagging.Block) {
	t.l3Log = append(t.l3Log, cache.LineRecord{
		SlotID: block.SlotID,
		State:  block.State,
	})
}
