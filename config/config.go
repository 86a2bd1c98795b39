// Package config builds the configuration of a cache hierarchy from the
// configuration commands of a run.
package config

import (
	"github.com/sarchlab/cohsim/quantity"
)

// ChipConfig describes one chip and its private L2.
type ChipConfig struct {
	NumCores int
	L2Size   quantity.Size
	L2Speed  quantity.Time
	L2Blocks int
}

// Config is the complete configuration of a simulation. It is a value and is
// never changed once built.
type Config struct {
	MemorySize        quantity.Size
	LineSize          quantity.Size
	NumMemoryPages    uint64
	Chips             []ChipConfig
	L3Size            quantity.Size
	L3Speed           quantity.Time
	L3Blocks          int
	ReplacementSpeed  quantity.Time
	BroadcastSpeed    quantity.Time
	MemoryAccessSpeed quantity.Time
}

// NumChips returns the number of chips.
func (c Config) NumChips() int {
	return len(c.Chips)
}

// HasL3 returns true if the chips share an L3.
func (c Config) HasL3() bool {
	return len(c.Chips) > 1
}
