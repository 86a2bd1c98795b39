package mem

import (
	"github.com/sarchlab/cohsim/quantity"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddressTranslator", func() {
	var (
		t *AddressTranslator
	)

	BeforeEach(func() {
		var err error
		t, err = NewAddressTranslator(
			quantity.NewSize(4, quantity.KB),
			quantity.NewSize(64, quantity.B),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should count memory pages", func() {
		Expect(t.NumPages).To(Equal(uint64(64)))
	})

	It("should reject a line larger than the memory", func() {
		_, err := NewAddressTranslator(
			quantity.NewSize(32, quantity.B),
			quantity.NewSize(64, quantity.B),
		)
		Expect(err).To(HaveOccurred())
	})

	It("should find the page of an address", func() {
		Expect(t.PageOf(0)).To(Equal(uint64(0)))
		Expect(t.PageOf(63)).To(Equal(uint64(0)))
		Expect(t.PageOf(64)).To(Equal(uint64(1)))
		Expect(t.PageOf(0x100)).To(Equal(uint64(4)))
	})

	It("should cover an aligned transfer exactly", func() {
		pages, err := t.BlocksTouched(0x40, quantity.NewSize(128, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{1, 2}))
	})

	It("should round an aligned partial transfer up", func() {
		pages, err := t.BlocksTouched(0x40, quantity.NewSize(65, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{1, 2}))
	})

	It("should include the extra page of a misaligned transfer", func() {
		pages, err := t.BlocksTouched(0x30, quantity.NewSize(64, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{0, 1}))
	})

	It("should keep a misaligned transfer inside its line", func() {
		pages, err := t.BlocksTouched(0x41, quantity.NewSize(8, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{1}))
	})

	It("should touch one page for an empty transfer", func() {
		pages, err := t.BlocksTouched(0x80, quantity.NewSize(0, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{2}))
	})

	It("should convert transfer units", func() {
		pages, err := t.BlocksTouched(0, quantity.NewSize(1, quantity.KB))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(16))
	})

	It("should return a contiguous run of the expected length", func() {
		for addr := uint64(0); addr < 256; addr += 7 {
			for size := uint64(0); size < 300; size += 13 {
				pages, err := t.BlocksTouched(addr,
					quantity.NewSize(size, quantity.B))
				Expect(err).NotTo(HaveOccurred())

				span := addr%64 + size
				expected := (span + 63) / 64
				if expected == 0 {
					expected = 1
				}

				Expect(pages).To(HaveLen(int(expected)))
				Expect(pages[0]).To(Equal(addr / 64))
				for i := 1; i < len(pages); i++ {
					Expect(pages[i]).To(Equal(pages[i-1] + 1))
				}
			}
		}
	})

	It("should reject an address past the last page", func() {
		_, err := t.BlocksTouched(65*64, quantity.NewSize(8, quantity.B))
		Expect(err).To(MatchError(ErrAddressOutOfRange))
	})

	It("should accept the address right at the page count", func() {
		pages, err := t.BlocksTouched(64*64, quantity.NewSize(8, quantity.B))
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([]uint64{64}))
	})
})
