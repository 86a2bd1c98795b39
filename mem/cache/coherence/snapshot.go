package coherence

import (
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/internal/tagging"
)

// LineSnapshot is a copy of one slot of a level.
type LineSnapshot struct {
	SlotID int         `json:"slot_id"`
	Valid  bool        `json:"valid"`
	Page   uint64      `json:"page"`
	State  string      `json:"state"`
	Owner  cache.Owner `json:"owner"`
}

// LevelSnapshot is a copy of the content of a cache level.
type LevelSnapshot struct {
	Name      string         `json:"name"`
	NumBlocks int            `json:"num_blocks"`
	NumValid  int            `json:"num_valid"`
	Lines     []LineSnapshot `json:"lines"`
	LRUOrder  []int          `json:"lru_order"`
}

// LevelNames lists the cache levels, L2s first.
func (h *Hierarchy) LevelNames() []string {
	names := make([]string, 0, len(h.chips)+1)
	for _, c := range h.chips {
		names = append(names, c.name)
	}

	if h.l3 != nil {
		names = append(names, h.l3.name)
	}

	return names
}

// Snapshot copies the content of the named level.
func (h *Hierarchy) Snapshot(levelName string) (LevelSnapshot, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, c := range h.chips {
		if c.name == levelName {
			return snapshotTags(c.name, c.tags), true
		}
	}

	if h.l3 != nil && h.l3.name == levelName {
		return snapshotTags(h.l3.name, h.l3.tags), true
	}

	return LevelSnapshot{}, false
}

// Snapshots copies the content of every level.
func (h *Hierarchy) Snapshots() []LevelSnapshot {
	names := h.LevelNames()
	snapshots := make([]LevelSnapshot, 0, len(names))

	for _, name := range names {
		s, _ := h.Snapshot(name)
		snapshots = append(snapshots, s)
	}

	return snapshots
}

func snapshotTags(name string, tags *tagging.LineTable) LevelSnapshot {
	s := LevelSnapshot{
		Name:      name,
		NumBlocks: tags.NumBlocks(),
		NumValid:  tags.NumValid(),
		LRUOrder:  tags.LRUOrder(),
	}

	for _, b := range tags.Blocks() {
		s.Lines = append(s.Lines, LineSnapshot{
			SlotID: b.SlotID,
			Valid:  b.IsValid,
			Page:   b.Page,
			State:  b.State.String(),
			Owner:  b.Owner,
		})
	}

	return s
}
