// Package coherence simulates a two-level cache hierarchy kept coherent with a
// MESI protocol. Each chip has a private L2 shared by its cores. When there is
// more than one chip, the chips share an L3.
package coherence

import (
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/cohsim/config"
	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem"
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/timing"
)

// Hierarchy serves read and write requests one at a time. Access may be
// called from multiple goroutines; the calls are serialized.
type Hierarchy struct {
	hooking.HookableBase

	name       string
	lock       sync.Mutex
	config     config.Config
	translator *mem.AddressTranslator
	costs      costs
	chips      []*l2Cache
	l3         *l3Cache
	timing     *timing.Accumulator
}

// Name returns the name of the hierarchy.
func (h *Hierarchy) Name() string {
	return h.name
}

// Config returns the configuration the hierarchy was built with.
func (h *Hierarchy) Config() config.Config {
	return h.config
}

// HasL3 returns true if the chips share an L3.
func (h *Hierarchy) HasL3() bool {
	return h.l3 != nil
}

// Access serves a request. Requests that fall outside the memory or name a
// chip or core that does not exist are rejected without changing any state.
func (h *Hierarchy) Access(req Request) Outcome {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    HookPosAccessStart,
		Item:   req,
	})

	outcome := Outcome{
		ID:      xid.New().String(),
		Request: req,
		HasL3:   h.HasL3(),
	}

	pages, chipID, err := h.validate(req)
	if err != nil {
		return h.reject(outcome, err)
	}

	t := &transaction{
		req:    req,
		chipID: chipID,
		owner:  cache.Owner{ChipID: chipID, CoreID: req.CoreID},
		timing: h.timing,
	}

	for _, page := range pages {
		switch req.Kind {
		case Read:
			h.readPage(t, page)
		case Write:
			h.writePage(t, page)
		default:
			panic(fmt.Sprintf("unknown access kind %d", req.Kind))
		}
	}

	outcome.Status = StatusCompleted
	outcome.ChipID = chipID
	outcome.Pages = pages
	outcome.L2 = t.l2Log
	outcome.L3 = t.l3Log
	outcome.Events = h.timing.Events()
	outcome.Total = h.timing.Total()

	h.timing.Reset()

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    HookPosAccessDone,
		Item:   outcome,
	})

	return outcome
}

func (h *Hierarchy) validate(req Request) ([]uint64, int, error) {
	pages, err := h.translator.BlocksTouched(req.Address, req.Size)
	if err != nil {
		return nil, 0, err
	}

	chipID := req.ChipID
	if chipID == AnyChip {
		chipID = 0
	}

	if chipID < 0 || chipID >= len(h.chips) {
		return nil, 0, fmt.Errorf("%w: chip %d, there are %d chips",
			ErrInvalidChip, req.ChipID, len(h.chips))
	}

	numCores := h.chips[chipID].numCores
	if req.CoreID < 0 || req.CoreID >= numCores {
		return nil, 0, fmt.Errorf("%w: core %d, chip %d has %d cores",
			ErrInvalidCore, req.CoreID, chipID, numCores)
	}

	return pages, chipID, nil
}

func (h *Hierarchy) reject(outcome Outcome, reason error) Outcome {
	outcome.Status = StatusRejected
	outcome.RejectReason = reason

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    HookPosAccessRejected,
		Item:   outcome,
		Detail: reason,
	})

	return outcome
}

func (h *Hierarchy) readPage(t *transaction, page uint64) {
	l2 := h.chips[t.chipID]

	block, found := l2.lookup(t, page)
	if found {
		l2.readHit(t, block)
		return
	}

	if h.l3 == nil {
		l2.loadFromMemory(t, page)
		return
	}

	l3Block, found := h.l3.lookup(t, page, true)
	if found {
		h.l3.readHit(t, l3Block)
		return
	}

	l2.loadFromMemory(t, page)
	h.l3.fill(t, page, cache.Exclusive)
}

func (h *Hierarchy) writePage(t *transaction, page uint64) {
	l2 := h.chips[t.chipID]

	block, found := l2.lookup(t, page)
	if found {
		l2.writeHit(t, block)
	} else {
		l2.writeMiss(t, page)
	}

	if h.l3 == nil {
		return
	}

	l3Block, inL3 := h.l3.lookup(t, page, !found)
	if inL3 {
		h.l3.rewrite(t, l3Block)
	} else {
		h.l3.fill(t, page, cache.Modified)
	}
}

// L2Line reports the slot and state of a page in a chip's L2.
func (h *Hierarchy) L2Line(chipID int, page uint64) (cache.LineRecord, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if chipID < 0 || chipID >= len(h.chips) {
		return cache.LineRecord{}, false
	}

	block, found := h.chips[chipID].tags.Lookup(page)
	if !found {
		return cache.LineRecord{}, false
	}

	return cache.LineRecord{SlotID: block.SlotID, State: block.State}, true
}

// L3Line reports the slot and state of a page in the shared L3.
func (h *Hierarchy) L3Line(page uint64) (cache.LineRecord, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.l3 == nil {
		return cache.LineRecord{}, false
	}

	block, found := h.l3.tags.Lookup(page)
	if !found {
		return cache.LineRecord{}, false
	}

	return cache.LineRecord{SlotID: block.SlotID, State: block.State}, true
}
