// Package cache defines the vocabulary shared by the cache levels of the
// hierarchy: coherence states, line owners, and per-line results.
package cache

import "strconv"

// State is the MESI coherence state of a cache line.
type State int

// Defines the coherence states. The zero value is Invalid.
const (
	Invalid State = iota
	Shared
	Exclusive
	Modified
)

var stateLetters = []string{"I", "S", "E", "M"}

// String returns the one-letter name of the state.
func (s State) String() string {
	if s < Invalid || s > Modified {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}

	return stateLetters[s]
}

// IsDirty returns true if the line holds data that memory does not have.
func (s State) IsDirty() bool {
	return s == Modified
}

// Owner identifies the core that last wrote or exclusively read a line. The
// private level only ever compares cores of its own chip; the shared level
// compares the whole pair.
type Owner struct {
	ChipID int
	CoreID int
}

func (o Owner) String() string {
	return "chip" + strconv.Itoa(o.ChipID) + "/core" + strconv.Itoa(o.CoreID)
}

// LineRecord reports the slot a line was found in or placed into during an
// access, and the state the line was left in.
type LineRecord struct {
	SlotID int
	State  State
}
