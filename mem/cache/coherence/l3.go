package coherence

import (
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/internal/tagging"
	"github.com/sarchlab/cohsim/quantity"
	"github.com/sarchlab/cohsim/timing"
)

// l3Cache is shared by all the chips. It tracks which chip and core own each
// line so that a write from another chip can invalidate the stale copy.
type l3Cache struct {
	name    string
	speed   quantity.Time
	tags    *tagging.LineTable
	costs   *costs
	l2Cache []*l2Cache
}

// lookup searches the page. The check is only charged when charge is set.
func (c *l3Cache) lookup(
	t *transaction,
	page uint64,
	charge bool,
) (tagging.Block, bool) {
	block, found := c.tags.Lookup(page)

	if charge {
		if found {
			t.record(timing.OpL3Hit, c.speed)
		} else {
			t.record(timing.OpL3Miss, c.speed)
		}
	}

	return block, found
}

func (c *l3Cache) readHit(t *transaction, block tagging.Block) {
	if block.Owner != t.owner {
		block.Owner = t.owner
		block.State = cache.Shared
	}

	c.tags.Update(block)
	t.logL3(block)
	t.record(timing.OpL3Read, c.speed)
	c.tags.Visit(block.SlotID)
}

// fill places a page that missed in the L3. Reads fill in the Exclusive state,
// writes in the Modified state.
func (c *l3Cache) fill(t *transaction, page uint64, state cache.State) {
	block, victim, evicted := c.tags.Allocate(page, state, t.owner)
	t.logL3(block)

	if evicted {
		t.record(timing.OpReplace, c.costs.replace)

		if victim.State == cache.Modified {
			t.record(timing.OpL3Writeback, c.costs.memory)
		}

		if victim.State == cache.Modified || victim.State == cache.Shared {
			t.record(timing.OpBroadcast, c.costs.broadcast)
		}
	}

	t.record(timing.OpL3Write, c.speed)
}

// rewrite transfers the ownership of a resident line to the writer. A Modified
// or Shared line is broadcast, and the copy in the L2 of the previous owner's
// chip is invalidated unless that chip is the writer's.
func (c *l3Cache) rewrite(t *transaction, block tagging.Block) {
	shared := block.State == cache.Modified || block.State == cache.Shared

	if shared {
		if block.Owner.ChipID != t.chipID {
			c.l2Cache[block.Owner.ChipID].invalidate(block.Page)
		}

		t.record(timing.OpBroadcast, c.costs.broadcast)
	}

	block.Owner = t.owner
	block.State = cache.Modified

	c.tags.Update(block)
	t.logL3(block)
	t.record(timing.OpL3Write, c.speed)
	c.tags.Visit(block.SlotID)
}
