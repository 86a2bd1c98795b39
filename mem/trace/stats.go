package trace

import (
	"sync"

	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/timing"
)

// Stats summarizes the accesses seen by a StatsTracer.
type Stats struct {
	Accepted uint64            `json:"accepted"`
	Rejected uint64            `json:"rejected"`
	Reads    uint64            `json:"reads"`
	Writes   uint64            `json:"writes"`
	Ops      map[string]uint64 `json:"ops"`
	TotalNS  uint64            `json:"total_ns"`
}

// HitRate returns hits / (hits + misses), or 0 when neither happened.
func (s Stats) HitRate(hit, miss timing.Op) float64 {
	hits := s.Ops[hit.String()]
	misses := s.Ops[miss.String()]

	if hits+misses == 0 {
		return 0
	}

	return float64(hits) / float64(hits+misses)
}

// StatsTracer is a hook that counts accesses and timed operations. It is safe
// to read the statistics while the hierarchy is running.
type StatsTracer struct {
	lock  sync.Mutex
	stats Stats
}

// NewStatsTracer creates a StatsTracer.
func NewStatsTracer() *StatsTracer {
	return &StatsTracer{
		stats: Stats{Ops: make(map[string]uint64)},
	}
}

// Func counts the access.
func (t *StatsTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != coherence.HookPosAccessDone &&
		ctx.Pos != coherence.HookPosAccessRejected {
		return
	}

	o := ctx.Item.(coherence.Outcome)

	t.lock.Lock()
	defer t.lock.Unlock()

	if o.Rejected() {
		t.stats.Rejected++
		return
	}

	t.stats.Accepted++

	switch o.Request.Kind {
	case coherence.Read:
		t.stats.Reads++
	case coherence.Write:
		t.stats.Writes++
	}

	for _, e := range o.Events {
		t.stats.Ops[e.Op.String()] += e.Count
	}

	t.stats.TotalNS += o.Total.Nanoseconds()
}

// Stats returns a copy of the statistics.
func (t *StatsTracer) Stats() Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.stats
	s.Ops = make(map[string]uint64, len(t.stats.Ops))

	for op, count := range t.stats.Ops {
		s.Ops[op] = count
	}

	return s
}

// Reset clears the statistics.
func (t *StatsTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.stats = Stats{Ops: make(map[string]uint64)}
}
