package trace

import (
	"bytes"
	"errors"
	"log"

	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem/cache"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/quantity"
	"github.com/sarchlab/cohsim/timing"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sampleRequest(kind coherence.AccessKind) coherence.Request {
	return coherence.Request{
		Kind:    kind,
		ChipID:  coherence.AnyChip,
		CoreID:  1,
		Address: 0x70,
		Size:    quantity.NewSize(32, quantity.B),
	}
}

func completedOutcome(kind coherence.AccessKind) coherence.Outcome {
	return coherence.Outcome{
		ID:      "access1",
		Request: sampleRequest(kind),
		Status:  coherence.StatusCompleted,
		ChipID:  0,
		Pages:   []uint64{1, 2},
		L2: []cache.LineRecord{
			{SlotID: 0, State: cache.Exclusive},
			{SlotID: 3, State: cache.Shared},
		},
		Events: []timing.Event{
			{Op: timing.OpL2Miss, Cost: quantity.NewTime(5, quantity.NS), Count: 1},
			{Op: timing.OpL2Hit, Cost: quantity.NewTime(5, quantity.NS), Count: 1},
			{Op: timing.OpMemRead, Cost: quantity.NewTime(1, quantity.US), Count: 1},
		},
		Total: quantity.NewTime(1010, quantity.NS),
	}
}

func rejectedOutcome() coherence.Outcome {
	return coherence.Outcome{
		ID:           "access2",
		Request:      sampleRequest(coherence.Read),
		Status:       coherence.StatusRejected,
		RejectReason: errors.New("address out of memory pages range"),
	}
}

func doneCtx(o coherence.Outcome) hooking.HookCtx {
	return hooking.HookCtx{Pos: coherence.HookPosAccessDone, Item: o}
}

var _ = Describe("Tracer", func() {
	var (
		buf    *bytes.Buffer
		tracer hooking.Hook
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		tracer = NewTracer(log.New(buf, "", 0))
	})

	It("should log the start of an access", func() {
		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessStart,
			Item: sampleRequest(coherence.Write),
		})

		Expect(buf.String()).To(Equal("start, write, chip -1, core 1, 0x70, 32B\n"))
	})

	It("should log the end of an access", func() {
		tracer.Func(doneCtx(completedOutcome(coherence.Read)))

		Expect(buf.String()).To(Equal(
			"end, access1, pages 1&2, L2 0:E&3:S, L3 -, 1010ns\n"))
	})

	It("should log a rejection", func() {
		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessRejected,
			Item: rejectedOutcome(),
		})

		Expect(buf.String()).To(
			Equal("rejected, access2, address out of memory pages range\n"))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl     *gomock.Controller
		dataRecorder *MockDataRecorder
		tracer       hooking.Hook
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dataRecorder = NewMockDataRecorder(mockCtrl)

		dataRecorder.EXPECT().CreateTable(AccessTable, AccessEntry{})
		dataRecorder.EXPECT().CreateTable(EventTable, EventEntry{})

		tracer = NewDBTracer(dataRecorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should ignore the start of an access", func() {
		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessStart,
			Item: sampleRequest(coherence.Read),
		})
	})

	It("should record an access and its events", func() {
		gomock.InOrder(
			dataRecorder.EXPECT().InsertData(AccessTable, AccessEntry{
				ID:       "access1",
				Kind:     "read",
				ChipID:   0,
				CoreID:   1,
				Address:  0x70,
				ByteSize: 32,
				Status:   "completed",
				Pages:    "1&2",
				L2:       "0:E&3:S",
				L3:       "-",
				TotalNS:  1010,
			}),
			dataRecorder.EXPECT().InsertData(EventTable, EventEntry{
				ID:       "access1_L2miss",
				AccessID: "access1",
				Op:       "L2miss",
				CostNS:   5,
				Count:    1,
				TotalNS:  5,
			}),
			dataRecorder.EXPECT().InsertData(EventTable, gomock.Any()),
			dataRecorder.EXPECT().InsertData(EventTable, EventEntry{
				ID:       "access1_mem_read",
				AccessID: "access1",
				Op:       "mem_read",
				CostNS:   1000,
				Count:    1,
				TotalNS:  1000,
			}),
		)

		tracer.Func(doneCtx(completedOutcome(coherence.Read)))
	})

	It("should record a rejection with its reason", func() {
		dataRecorder.EXPECT().InsertData(AccessTable, AccessEntry{
			ID:       "access2",
			Kind:     "read",
			ChipID:   coherence.AnyChip,
			CoreID:   1,
			Address:  0x70,
			ByteSize: 32,
			Status:   "rejected",
			Reason:   "address out of memory pages range",
		})

		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessRejected,
			Item: rejectedOutcome(),
		})
	})
})

var _ = Describe("StatsTracer", func() {
	var tracer *StatsTracer

	BeforeEach(func() {
		tracer = NewStatsTracer()
	})

	It("should count accesses and operations", func() {
		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessStart,
			Item: sampleRequest(coherence.Read),
		})
		tracer.Func(doneCtx(completedOutcome(coherence.Read)))
		tracer.Func(doneCtx(completedOutcome(coherence.Write)))
		tracer.Func(hooking.HookCtx{
			Pos:  coherence.HookPosAccessRejected,
			Item: rejectedOutcome(),
		})

		s := tracer.Stats()

		Expect(s.Accepted).To(Equal(uint64(2)))
		Expect(s.Rejected).To(Equal(uint64(1)))
		Expect(s.Reads).To(Equal(uint64(1)))
		Expect(s.Writes).To(Equal(uint64(1)))
		Expect(s.Ops).To(HaveKeyWithValue("L2miss", uint64(2)))
		Expect(s.Ops).To(HaveKeyWithValue("mem_read", uint64(2)))
		Expect(s.TotalNS).To(Equal(uint64(2020)))
		Expect(s.HitRate(timing.OpL2Hit, timing.OpL2Miss)).To(Equal(0.5))
		Expect(s.HitRate(timing.OpL3Hit, timing.OpL3Miss)).To(BeZero())
	})

	It("should return a copy", func() {
		tracer.Func(doneCtx(completedOutcome(coherence.Read)))

		s := tracer.Stats()
		s.Ops["L2miss"] = 100

		Expect(tracer.Stats().Ops).To(HaveKeyWithValue("L2miss", uint64(1)))
	})

	It("should reset", func() {
		tracer.Func(doneCtx(completedOutcome(coherence.Read)))
		tracer.Reset()

		Expect(tracer.Stats().Accepted).To(BeZero())
		Expect(tracer.Stats().Ops).To(BeEmpty())
	})
})
