package trace

import (
	"github.com/sarchlab/cohsim/datarecording"
	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
)

// Names of the tables written by the database tracer.
const (
	AccessTable = "cache_accesses"
	EventTable  = "cache_access_events"
)

// AccessEntry is a row of the access table.
type AccessEntry struct {
	ID       string
	Kind     string
	ChipID   int
	CoreID   int
	Address  uint64
	ByteSize uint64
	Status   string
	Reason   string
	Pages    string
	L2       string
	L3       string
	TotalNS  uint64
}

// EventEntry is a row of the event table. Each row aggregates one kind of
// timed operation of an access.
type EventEntry struct {
	ID       string
	AccessID string
	Op       string
	CostNS   uint64
	Count    uint64
	TotalNS  uint64
}

// A dbTracer is a hook that records every access into a database.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that records accesses with the data recorder.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(AccessTable, AccessEntry{})
	t.dataRecorder.CreateTable(EventTable, EventEntry{})

	return t
}

// Func records finished and rejected accesses.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != coherence.HookPosAccessDone &&
		ctx.Pos != coherence.HookPosAccessRejected {
		return
	}

	o := ctx.Item.(coherence.Outcome)

	t.dataRecorder.InsertData(AccessTable, accessEntryOf(o))

	for _, e := range o.Events {
		t.dataRecorder.InsertData(EventTable, EventEntry{
			ID:       o.ID + "_" + e.Op.String(),
			AccessID: o.ID,
			Op:       e.Op.String(),
			CostNS:   e.Cost.Nanoseconds(),
			Count:    e.Count,
			TotalNS:  e.Total().Nanoseconds(),
		})
	}
}

func accessEntryOf(o coherence.Outcome) AccessEntry {
	entry := AccessEntry{
		ID:       o.ID,
		Kind:     o.Request.Kind.String(),
		ChipID:   o.Request.ChipID,
		CoreID:   o.Request.CoreID,
		Address:  o.Request.Address,
		ByteSize: o.Request.Size.Bytes(),
		Status:   o.Status.String(),
	}

	if o.Rejected() {
		entry.Reason = o.RejectReason.Error()
		return entry
	}

	entry.ChipID = o.ChipID
	entry.Pages = joinPages(o.Pages)
	entry.L2 = joinLines(o.L2)
	entry.L3 = joinLines(o.L3)
	entry.TotalNS = o.Total.Nanoseconds()

	return entry
}
