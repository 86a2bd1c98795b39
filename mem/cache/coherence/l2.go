package coherence

import (
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/internal/tagging"
	"github.com/sarchlab/cohsim/quantity"
	"github.com/sarchlab/cohsim/timing"
)

// l2Cache is the private cache of a chip, shared by the cores of the chip.
type l2Cache struct {
	name     string
	chipID   int
	numCores int
	speed    quantity.Time
	tags     *tagging.LineTable
	costs    *costs
}

// lookup searches the page and charges the check.
func (c *l2Cache) lookup(t *transaction, page uint64) (tagging.Block, bool) {
	block, found := c.tags.Lookup(page)
	if found {
		t.record(timing.OpL2Hit, c.speed)
	} else {
		t.record(timing.OpL2Miss, c.speed)
	}

	return block, found
}

func (c *l2Cache) readHit(t *transaction, block tagging.Block) {
	if block.Owner != t.owner {
		if block.State == cache.Modified {
			t.record(timing.OpL2Writeback, c.costs.memory)
		}

		block.Owner = t.owner
		block.State = cache.Shared
	} else if block.State == cache.Modified {
		block.State = cache.Exclusive
	}

	c.tags.Update(block)
	t.logL2(block)
	t.record(timing.OpL2Read, c.speed)
	c.tags.Visit(block.SlotID)
}

func (c *l2Cache) loadFromMemory(t *transaction, page uint64) {
	block, victim, evicted := c.tags.Allocate(page, cache.Exclusive, t.owner)
	t.logL2(block)

	if evicted {
		t.record(timing.OpReplace, c.costs.replace)

		if victim.State == cache.Modified {
			t.record(timing.OpL2Writeback, c.costs.memory)
		}
	}

	t.record(timing.OpMemRead, c.costs.memory)
	t.record(timing.OpL2Read, c.speed)
}

func (c *l2Cache) writeHit(t *transaction, block tagging.Block) {
	if block.State == cache.Shared {
		t.record(timing.OpBroadcast, c.costs.broadcast)
	}

	block.Owner = t.owner
	block.State = cache.Modified

	c.tags.Update(block)
	t.logL2(block)
	t.record(timing.OpL2Write, c.speed)
	c.tags.Visit(block.SlotID)
}

func (c *l2Cache) writeMiss(t *transaction, page uint64) {
	block, victim, evicted := c.tags.Allocate(page, cache.Modified, t.owner)
	t.logL2(block)

	if evicted {
		if victim.State == cache.Shared {
			t.record(timing.OpBroadcast, c.costs.broadcast)
		}

		t.record(timing.OpReplace, c.costs.replace)
	}

	t.record(timing.OpL2Write, c.speed)
}

// invalidate drops the page from the cache, if present.
func (c *l2Cache) invalidate(page uint64) bool {
	block, found := c.tags.Lookup(page)
	if !found {
		return false
	}

	c.tags.Invalidate(block.SlotID)

	return true
}
