package config

import (
	"fmt"

	"github.com/sarchlab/cohsim/quantity"
)

// Builder accumulates configuration commands and checks that they arrive in a
// legal order.
type Builder struct {
	issued [numKinds]bool

	memorySize        quantity.Size
	lineSize          quantity.Size
	numMemoryPages    uint64
	chips             []ChipConfig
	l2SpeedSet        []bool
	l3Size            quantity.Size
	l3Speed           quantity.Time
	l3SpeedSet        bool
	l3Blocks          int
	replacementSpeed  quantity.Time
	broadcastSpeed    quantity.Time
	memoryAccessSpeed quantity.Time
}

// NewBuilder creates a builder for a single-chip system. SetChipCount can
// change the number of chips.
func NewBuilder() *Builder {
	b := &Builder{
		chips:      make([]ChipConfig, 1),
		l2SpeedSet: make([]bool, 1),
	}

	return b
}

// Issued returns true if a command of the kind has been applied.
func (b *Builder) Issued(kind CommandKind) bool {
	return b.issued[kind]
}

// Apply applies a configuration command.
func (b *Builder) Apply(cmd Command) error {
	var err error

	switch c := cmd.(type) {
	case SetMemorySize:
		err = b.setMemorySize(c)
	case SetChipCount:
		err = b.setChipCount(c)
	case SetCoreCount:
		err = b.setCoreCount(c)
	case SetCacheLineSize:
		err = b.setCacheLineSize(c)
	case SetCacheSize:
		err = b.setCacheSize(c)
	case SetCacheAccessSpeed:
		err = b.setCacheAccessSpeed(c)
	case SetReplacementSpeed:
		if err = b.requireTopology(c.Kind()); err == nil {
			b.replacementSpeed = c.Time
		}
	case SetBroadcastSpeed:
		if err = b.requireTopology(c.Kind()); err == nil {
			b.broadcastSpeed = c.Time
		}
	case SetMemoryAccessSpeed:
		if err = b.requireTopology(c.Kind()); err == nil {
			b.memoryAccessSpeed = c.Time
		}
	default:
		return fmt.Errorf("%w: command %T", ErrInvalidValue, cmd)
	}

	if err != nil {
		return err
	}

	b.issued[cmd.Kind()] = true

	return nil
}

func (b *Builder) setMemorySize(c SetMemorySize) error {
	for k := KindChipCount; k < numKinds; k++ {
		if b.issued[k] {
			return fmt.Errorf("%w: %s must be the first command",
				ErrOrdering, KindMemorySize)
		}
	}

	if c.Size.IsZero() {
		return fmt.Errorf("%w: memory size must be positive", ErrInvalidValue)
	}

	b.memorySize = c.Size

	return nil
}

func (b *Builder) setChipCount(c SetChipCount) error {
	if !b.issued[KindMemorySize] {
		return b.memorySizeFirst()
	}

	if b.issued[KindCoreCount] {
		return fmt.Errorf("%w: %s must come right after %s",
			ErrOrdering, KindChipCount, KindMemorySize)
	}

	if c.Count < 1 {
		return fmt.Errorf("%w: chip count %d", ErrInvalidValue, c.Count)
	}

	b.chips = make([]ChipConfig, c.Count)
	b.l2SpeedSet = make([]bool, c.Count)

	return nil
}

func (b *Builder) setCoreCount(c SetCoreCount) error {
	if !b.issued[KindMemorySize] {
		return b.memorySizeFirst()
	}

	if c.Count < 1 {
		return fmt.Errorf("%w: core count %d", ErrInvalidValue, c.Count)
	}

	if c.ChipID == AllChips {
		for i := range b.chips {
			b.chips[i].NumCores = c.Count
		}

		return nil
	}

	if err := b.mustBeValidChip(c.ChipID); err != nil {
		return err
	}

	b.chips[c.ChipID].NumCores = c.Count

	return nil
}

func (b *Builder) setCacheLineSize(c SetCacheLineSize) error {
	if err := b.requireTopology(c.Kind()); err != nil {
		return err
	}

	if b.issued[KindCacheSize] {
		return fmt.Errorf("%w: %s must come before %s",
			ErrOrdering, KindCacheLineSize, KindCacheSize)
	}

	if c.Size.IsZero() {
		return fmt.Errorf("%w: cache line size must be positive",
			ErrInvalidValue)
	}

	numPages, err := quantity.BlockCount(b.memorySize, c.Size)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrLineTooLarge, err)
	}

	b.lineSize = c.Size
	b.numMemoryPages = numPages

	return nil
}

func (b *Builder) setCacheSize(c SetCacheSize) error {
	if err := b.requireTopology(c.Kind()); err != nil {
		return err
	}

	if !b.issued[KindCacheLineSize] {
		return fmt.Errorf("%w: %s must come before %s",
			ErrOrdering, KindCacheLineSize, KindCacheSize)
	}

	numBlocks, err := quantity.BlockCount(c.Size, b.lineSize)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrLineTooLarge, err)
	}

	if c.ChipID == AllChips && len(b.chips) > 1 {
		b.l3Size = c.Size
		b.l3Blocks = int(numBlocks)

		return nil
	}

	chipID := c.ChipID
	if chipID == AllChips {
		chipID = 0
	}

	if err := b.mustBeValidChip(chipID); err != nil {
		return err
	}

	b.chips[chipID].L2Size = c.Size
	b.chips[chipID].L2Blocks = int(numBlocks)

	return nil
}

func (b *Builder) setCacheAccessSpeed(c SetCacheAccessSpeed) error {
	if err := b.requireTopology(c.Kind()); err != nil {
		return err
	}

	if c.ChipID == AllChips && len(b.chips) > 1 {
		b.l3Speed = c.Time
		b.l3SpeedSet = true

		return nil
	}

	chipID := c.ChipID
	if chipID == AllChips {
		chipID = 0
	}

	if err := b.mustBeValidChip(chipID); err != nil {
		return err
	}

	b.chips[chipID].L2Speed = c.Time
	b.l2SpeedSet[chipID] = true

	return nil
}

// requireTopology makes sure the memory size and core counts are known.
func (b *Builder) requireTopology(kind CommandKind) error {
	if !b.issued[KindMemorySize] {
		return b.memorySizeFirst()
	}

	if !b.issued[KindCoreCount] {
		return fmt.Errorf("%w: %s must come before %s",
			ErrOrdering, KindCoreCount, kind)
	}

	return nil
}

func (b *Builder) memorySizeFirst() error {
	return fmt.Errorf("%w: %s must be the first command",
		ErrOrdering, KindMemorySize)
}

func (b *Builder) mustBeValidChip(chipID int) error {
	if chipID < 0 || chipID >= len(b.chips) {
		return fmt.Errorf("%w: chip %d does not exist, there are %d chips",
			ErrInvalidValue, chipID, len(b.chips))
	}

	return nil
}

// Build returns the configuration once every required command has been
// issued.
func (b *Builder) Build() (Config, error) {
	for k := KindCoreCount; k < numKinds; k++ {
		if !b.issued[k] {
			return Config{}, fmt.Errorf("%w: %s", ErrMissingCommand, k)
		}
	}

	if err := b.mustHaveCompleteChips(); err != nil {
		return Config{}, err
	}

	chips := make([]ChipConfig, len(b.chips))
	copy(chips, b.chips)

	c := Config{
		MemorySize:        b.memorySize,
		LineSize:          b.lineSize,
		NumMemoryPages:    b.numMemoryPages,
		Chips:             chips,
		L3Size:            b.l3Size,
		L3Speed:           b.l3Speed,
		L3Blocks:          b.l3Blocks,
		ReplacementSpeed:  b.replacementSpeed,
		BroadcastSpeed:    b.broadcastSpeed,
		MemoryAccessSpeed: b.memoryAccessSpeed,
	}

	return c, nil
}

func (b *Builder) mustHaveCompleteChips() error {
	for i, chip := range b.chips {
		if chip.NumCores == 0 {
			return fmt.Errorf("%w: %s for chip %d",
				ErrMissingCommand, KindCoreCount, i)
		}

		if chip.L2Blocks == 0 {
			return fmt.Errorf("%w: %s for chip %d",
				ErrMissingCommand, KindCacheSize, i)
		}

		if !b.l2SpeedSet[i] {
			return fmt.Errorf("%w: %s for chip %d",
				ErrMissingCommand, KindCacheAccessSpeed, i)
		}
	}

	if len(b.chips) > 1 {
		if b.l3Blocks == 0 {
			return fmt.Errorf("%w: %s for the shared L3",
				ErrMissingCommand, KindCacheSize)
		}

		if !b.l3SpeedSet {
			return fmt.Errorf("%w: %s for the shared L3",
				ErrMissingCommand, KindCacheAccessSpeed)
		}
	}

	return nil
}
