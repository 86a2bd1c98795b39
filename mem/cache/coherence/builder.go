package coherence

import (
	"fmt"

	"github.com/sarchlab/cohsim/config"
	"github.com/sarchlab/cohsim/mem"
	"github.com/sarchlab/cohsim/mem/cache/internal/tagging"
	"github.com/sarchlab/cohsim/timing"
)

// Builder can build cache hierarchies.
type Builder struct {
	config          config.Config
	replaceStrategy string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		replaceStrategy: "lru",
	}
}

// WithConfig sets the configuration of the hierarchy.
func (b Builder) WithConfig(c config.Config) Builder {
	b.config = c
	return b
}

// WithReplaceStrategy sets the replacement strategy of every level. Only
// "lru" is supported.
func (b Builder) WithReplaceStrategy(strategy string) Builder {
	b.replaceStrategy = strategy
	return b
}

// Build builds a hierarchy.
func (b Builder) Build(name string) (*Hierarchy, error) {
	if b.config.NumChips() == 0 {
		return nil, fmt.Errorf("%w: no chip configured", config.ErrMissingCommand)
	}

	translator, err := mem.NewAddressTranslator(
		b.config.MemorySize, b.config.LineSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", config.ErrLineTooLarge, err)
	}

	h := &Hierarchy{
		name:       name,
		config:     b.config,
		translator: translator,
		timing:     timing.NewAccumulator(),
		costs: costs{
			replace:   b.config.ReplacementSpeed,
			broadcast: b.config.BroadcastSpeed,
			memory:    b.config.MemoryAccessSpeed,
		},
	}

	for i, chip := range b.config.Chips {
		if chip.L2Blocks <= 0 {
			return nil, fmt.Errorf("%w: cacheSize for chip %d",
				config.ErrMissingCommand, i)
		}

		h.chips = append(h.chips, &l2Cache{
			name:     fmt.Sprintf("%s.Chip[%d].L2", name, i),
			chipID:   i,
			numCores: chip.NumCores,
			speed:    chip.L2Speed,
			tags: tagging.NewLineTable(
				chip.L2Blocks, b.createVictimFinder()),
			costs: &h.costs,
		})
	}

	if b.config.HasL3() {
		if b.config.L3Blocks <= 0 {
			return nil, fmt.Errorf("%w: cacheSize for the shared L3",
				config.ErrMissingCommand)
		}

		h.l3 = &l3Cache{
			name:    name + ".L3",
			speed:   b.config.L3Speed,
			tags:    tagging.NewLineTable(b.config.L3Blocks, b.createVictimFinder()),
			costs:   &h.costs,
			l2Cache: h.chips,
		}
	}

	return h, nil
}

func (b Builder) createVictimFinder() tagging.VictimFinder {
	var victimFinder tagging.VictimFinder

	switch b.replaceStrategy {
	case "lru":
		victimFinder = tagging.NewLRUVictimFinder()
	default:
		panic("unknown replace strategy: " + b.replaceStrategy)
	}

	return victimFinder
}
