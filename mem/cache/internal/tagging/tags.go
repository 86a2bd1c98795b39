// Package tagging keeps track of which memory pages a cache level holds.
package tagging

import (
	"fmt"

	"github.com/sarchlab/cohsim/mem/cache"
)

// A Block is one line slot of a cache level.
type Block struct {
	SlotID  int
	Page    uint64
	State   cache.State
	Owner   cache.Owner
	IsValid bool
}

// A LineTable is a fully associative set of line slots with a global LRU
// order. The LRU order always holds exactly the valid slots.
type LineTable struct {
	blocks       []Block
	lru          recencyList
	victimFinder VictimFinder
}

// NewLineTable creates a table with numBlocks slots, all invalid.
func NewLineTable(numBlocks int, victimFinder VictimFinder) *LineTable {
	if numBlocks <= 0 {
		panic(fmt.Sprintf("a line table needs at least one slot, got %d",
			numBlocks))
	}

	t := &LineTable{
		blocks:       make([]Block, numBlocks),
		lru:          newRecencyList(numBlocks),
		victimFinder: victimFinder,
	}

	t.Reset()

	return t
}

// NumBlocks returns the capacity of the table.
func (t *LineTable) NumBlocks() int {
	return len(t.blocks)
}

// NumValid returns how many slots currently hold a line.
func (t *LineTable) NumValid() int {
	return t.lru.length
}

// Lookup finds the valid slot that holds the page.
func (t *LineTable) Lookup(page uint64) (Block, bool) {
	for _, block := range t.blocks {
		if block.IsValid && block.Page == page {
			return block, true
		}
	}

	return Block{}, false
}

// Block returns the content of a slot.
func (t *LineTable) Block(slotID int) Block {
	return t.blocks[slotID]
}

// Allocate places a page into the table and marks it most recently used. If
// the table is full, the least recently used line is evicted and returned so
// that the caller can account for it. Callers must have confirmed that the
// page is not in the table.
func (t *LineTable) Allocate(
	page uint64,
	state cache.State,
	owner cache.Owner,
) (block Block, victim Block, evicted bool) {
	if _, found := t.Lookup(page); found {
		panic(fmt.Sprintf("page %d allocated twice", page))
	}

	slotID, evicted := t.victimFinder.FindVictim(t)
	if evicted {
		victim = t.blocks[slotID]
		t.lru.remove(slotID)
	}

	block = Block{
		SlotID:  slotID,
		Page:    page,
		State:   state,
		Owner:   owner,
		IsValid: true,
	}
	t.blocks[slotID] = block
	t.lru.pushBack(slotID)

	return block, victim, evicted
}

// Update changes the state and owner of a valid slot. The LRU order is not
// affected.
func (t *LineTable) Update(block Block) {
	current := &t.blocks[block.SlotID]
	if !current.IsValid || current.Page != block.Page {
		panic(fmt.Sprintf("slot %d does not hold page %d",
			block.SlotID, block.Page))
	}

	if block.State == cache.Invalid {
		t.Invalidate(block.SlotID)
		return
	}

	current.State = block.State
	current.Owner = block.Owner
}

// Visit moves the slot to the most recently used end.
func (t *LineTable) Visit(slotID int) {
	if !t.lru.contains(slotID) {
		panic(fmt.Sprintf("slot %d is not in use", slotID))
	}

	t.lru.moveToBack(slotID)
}

// Invalidate drops the line in the slot and frees the slot.
func (t *LineTable) Invalidate(slotID int) {
	block := &t.blocks[slotID]
	block.IsValid = false
	block.State = cache.Invalid
	block.Owner = cache.Owner{}

	t.lru.remove(slotID)
}

// LRUOrder lists the valid slots from the least to the most recently used.
func (t *LineTable) LRUOrder() []int {
	return t.lru.slots()
}

// Blocks returns a copy of every slot.
func (t *LineTable) Blocks() []Block {
	blocks := make([]Block, len(t.blocks))
	copy(blocks, t.blocks)

	return blocks
}

// Reset marks every slot invalid.
func (t *LineTable) Reset() {
	for i := range t.blocks {
		t.blocks[i] = Block{SlotID: i}
	}

	t.lru.reset()
}
