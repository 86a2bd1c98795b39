package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/sarchlab/cohsim/config"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/mem/trace"
	"github.com/sarchlab/cohsim/quantity"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func buildHierarchy() *coherence.Hierarchy {
	ns := func(v uint64) quantity.Time { return quantity.NewTime(v, quantity.NS) }

	c := config.Config{
		MemorySize:     quantity.NewSize(4, quantity.KB),
		LineSize:       quantity.NewSize(64, quantity.B),
		NumMemoryPages: 64,
		Chips: []config.ChipConfig{
			{
				NumCores: 1,
				L2Size:   quantity.NewSize(256, quantity.B),
				L2Blocks: 4,
				L2Speed:  ns(5),
			},
		},
		ReplacementSpeed:  ns(2),
		BroadcastSpeed:    ns(3),
		MemoryAccessSpeed: ns(100),
	}

	h, err := coherence.MakeBuilder().WithConfig(c).Build("Hierarchy")
	Expect(err).NotTo(HaveOccurred())

	return h
}

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		handler http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		handler = m.Handler()
	})

	It("should refuse reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should serve an index page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("/api/levels"))
	})

	It("should answer 404 before the hierarchy is built", func() {
		Expect(get("/api/config").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/levels").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/stats").Code).To(Equal(http.StatusNotFound))
	})

	Context("with a hierarchy", func() {
		var h *coherence.Hierarchy

		BeforeEach(func() {
			h = buildHierarchy()
			m.RegisterHierarchy(h)
		})

		It("should list the levels", func() {
			rec := get("/api/levels")

			var names []string
			Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
			Expect(names).To(Equal([]string{"Hierarchy.Chip[0].L2"}))
		})

		It("should report the configuration", func() {
			rec := get("/api/config")

			var c config.Config
			Expect(json.Unmarshal(rec.Body.Bytes(), &c)).To(Succeed())
			Expect(c.NumMemoryPages).To(Equal(uint64(64)))
			Expect(c.Chips).To(HaveLen(1))
		})

		It("should serialize a level", func() {
			h.Access(coherence.Request{
				Kind:    coherence.Read,
				ChipID:  coherence.AnyChip,
				Address: 0x40,
				Size:    quantity.NewSize(4, quantity.B),
			})

			rec := get("/api/level/" + url.PathEscape("Hierarchy.Chip[0].L2"))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.Len()).NotTo(BeZero())
		})

		It("should answer 404 for unknown levels", func() {
			Expect(get("/api/level/L9").Code).To(Equal(http.StatusNotFound))
		})

		It("should reject malformed field requests", func() {
			rec := get("/api/field/" + url.PathEscape("{not json"))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("should report statistics", func() {
		h := buildHierarchy()
		tracer := trace.NewStatsTracer()
		h.AcceptHook(tracer)
		m.RegisterStatsTracer(tracer)

		req := coherence.Request{
			Kind:    coherence.Read,
			ChipID:  coherence.AnyChip,
			Address: 0,
			Size:    quantity.NewSize(4, quantity.B),
		}
		h.Access(req)
		h.Access(req)

		rec := get("/api/stats")

		var rsp statsRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Accepted).To(Equal(uint64(2)))
		Expect(rsp.L2HitRate).To(Equal(0.5))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("script", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		var bars []progressRsp
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("script"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)

		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(BeEmpty())
	})
})
