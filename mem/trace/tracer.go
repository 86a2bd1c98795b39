// Package trace provides hooks that observe the accesses served by a cache
// hierarchy.
package trace

import (
	"log"
	"strconv"
	"strings"

	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
)

// A tracer is a hook that logs the accesses of a hierarchy.
type tracer struct {
	logger *log.Logger
}

// NewTracer creates a hook that writes one line per access event to logger.
func NewTracer(logger *log.Logger) hooking.Hook {
	return &tracer{logger: logger}
}

// Func logs the access.
func (t *tracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case coherence.HookPosAccessStart:
		req := ctx.Item.(coherence.Request)
		t.logger.Printf("start, %s, chip %d, core %d, 0x%x, %s\n",
			req.Kind, req.ChipID, req.CoreID, req.Address, req.Size)
	case coherence.HookPosAccessDone:
		o := ctx.Item.(coherence.Outcome)
		t.logger.Printf("end, %s, pages %s, L2 %s, L3 %s, %s\n",
			o.ID, joinPages(o.Pages), joinLines(o.L2), joinLines(o.L3), o.Total)
	case coherence.HookPosAccessRejected:
		o := ctx.Item.(coherence.Outcome)
		t.logger.Printf("rejected, %s, %v\n", o.ID, o.RejectReason)
	}
}

func joinPages(pages []uint64) string {
	s := make([]string, len(pages))
	for i, p := range pages {
		s[i] = strconv.FormatUint(p, 10)
	}

	return strings.Join(s, "&")
}

// joinLines formats line records as slot:state pairs.
func joinLines(lines []cache.LineRecord) string {
	if len(lines) == 0 {
		return "-"
	}

	s := make([]string, len(lines))
	for i, l := range lines {
		s[i] = strconv.Itoa(l.SlotID) + ":" + l.State.String()
	}

	return strings.Join(s, "&")
}
