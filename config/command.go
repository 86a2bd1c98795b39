package config

import (
	"github.com/sarchlab/cohsim/quantity"
)

// AllChips selects every chip, or the shared level, when a command does not
// name a chip.
const AllChips = -1

// CommandKind identifies a configuration command. Kinds are listed in the
// order the commands have to be issued.
type CommandKind int

// Defines the configuration commands.
const (
	KindMemorySize CommandKind = iota
	KindChipCount
	KindCoreCount
	KindCacheLineSize
	KindCacheSize
	KindCacheAccessSpeed
	KindReplacementSpeed
	KindBroadcastSpeed
	KindMemoryAccessSpeed
	numKinds
)

var kindNames = [numKinds]string{
	"memorySize",
	"numOfChips",
	"numOfCores",
	"cacheLineSize",
	"cacheSize",
	"cacheAccessSpeed",
	"replacementSpeed",
	"broadcastSpeed",
	"memoryAccessSpeed",
}

func (k CommandKind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}

	return kindNames[k]
}

// A Command changes the simulation configuration.
type Command interface {
	Kind() CommandKind
}

// SetMemorySize sets the size of the main memory.
type SetMemorySize struct {
	Size quantity.Size
}

// Kind returns KindMemorySize.
func (SetMemorySize) Kind() CommandKind { return KindMemorySize }

// SetChipCount sets how many chips share the memory.
type SetChipCount struct {
	Count int
}

// Kind returns KindChipCount.
func (SetChipCount) Kind() CommandKind { return KindChipCount }

// SetCoreCount sets the number of cores of one chip, or of every chip if
// ChipID is AllChips.
type SetCoreCount struct {
	ChipID int
	Count  int
}

// Kind returns KindCoreCount.
func (SetCoreCount) Kind() CommandKind { return KindCoreCount }

// SetCacheLineSize sets the line size used by every cache level.
type SetCacheLineSize struct {
	Size quantity.Size
}

// Kind returns KindCacheLineSize.
func (SetCacheLineSize) Kind() CommandKind { return KindCacheLineSize }

// SetCacheSize sets the size of a chip's L2. Without a chip, it sets the L3 of
// a multi-chip system or the L2 of a single chip.
type SetCacheSize struct {
	ChipID int
	Size   quantity.Size
}

// Kind returns KindCacheSize.
func (SetCacheSize) Kind() CommandKind { return KindCacheSize }

// SetCacheAccessSpeed sets the access time of a cache level, selected the same
// way as SetCacheSize.
type SetCacheAccessSpeed struct {
	ChipID int
	Time   quantity.Time
}

// Kind returns KindCacheAccessSpeed.
func (SetCacheAccessSpeed) Kind() CommandKind { return KindCacheAccessSpeed }

// SetReplacementSpeed sets the cost of replacing a line.
type SetReplacementSpeed struct {
	Time quantity.Time
}

// Kind returns KindReplacementSpeed.
func (SetReplacementSpeed) Kind() CommandKind { return KindReplacementSpeed }

// SetBroadcastSpeed sets the cost of an invalidation broadcast.
type SetBroadcastSpeed struct {
	Time quantity.Time
}

// Kind returns KindBroadcastSpeed.
func (SetBroadcastSpeed) Kind() CommandKind { return KindBroadcastSpeed }

// SetMemoryAccessSpeed sets the cost of a memory read or write-back.
type SetMemoryAccessSpeed struct {
	Time quantity.Time
}

// Kind returns KindMemoryAccessSpeed.
func (SetMemoryAccessSpeed) Kind() CommandKind { return KindMemoryAccessSpeed }
