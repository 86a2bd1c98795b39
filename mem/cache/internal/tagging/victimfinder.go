package tagging

// A VictimFinder decides which slot receives a newly allocated line.
type VictimFinder interface {
	FindVictim(tags *LineTable) (slotID int, needEviction bool)
}

// LRUVictimFinder uses the free slot with the lowest index. When every slot
// holds a valid line, it picks the least recently used one.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the slot to fill and whether its current line has to be
// evicted first.
func (e *LRUVictimFinder) FindVictim(tags *LineTable) (int, bool) {
	for _, block := range tags.blocks {
		if !block.IsValid {
			return block.SlotID, false
		}
	}

	slot, ok := tags.lru.front()
	if !ok {
		panic("no valid line to evict in a full table")
	}

	return slot, true
}
