package quantity

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Size", func() {
	It("should convert to bytes", func() {
		Expect(NewSize(64, B).Bytes()).To(Equal(uint64(64)))
		Expect(NewSize(4, KB).Bytes()).To(Equal(uint64(4096)))
		Expect(NewSize(1, MB).Bytes()).To(Equal(uint64(1 << 20)))
		Expect(NewSize(2, GB).Bytes()).To(Equal(uint64(2 << 30)))
	})

	It("should compare across units", func() {
		Expect(NewSize(1, KB).Compare(NewSize(1024, B))).To(Equal(0))
		Expect(NewSize(1, KB).Compare(NewSize(1000, B))).To(Equal(1))
		Expect(NewSize(1023, KB).Compare(NewSize(1, MB))).To(Equal(-1))
	})

	It("should not let a smaller unit with a larger magnitude win", func() {
		Expect(NewSize(2048, B).Compare(NewSize(1, KB))).To(Equal(1))
	})

	It("should format", func() {
		Expect(NewSize(64, B).String()).To(Equal("64B"))
		Expect(NewSize(4, GB).String()).To(Equal("4GB"))
	})

	DescribeTable("parsing",
		func(str string, expected Size) {
			s, err := ParseSize(str)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(expected))
		},
		Entry("bytes", "64B", NewSize(64, B)),
		Entry("kilobytes", "32KB", NewSize(32, KB)),
		Entry("with space", "2 MB", NewSize(2, MB)),
		Entry("gigabytes", " 4GB ", NewSize(4, GB)),
	)

	DescribeTable("parsing errors",
		func(str string) {
			_, err := ParseSize(str)
			Expect(err).To(HaveOccurred())
		},
		Entry("no number", "KB"),
		Entry("bad unit", "4TB"),
		Entry("time unit", "4ns"),
		Entry("empty", ""),
	)

	Context("block count", func() {
		It("should divide the size into lines", func() {
			n, err := BlockCount(NewSize(1, KB), NewSize(64, B))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(uint64(16)))
		})

		It("should floor and never exceed the size", func() {
			for _, cacheBytes := range []uint64{64, 100, 1000, 4096, 5000} {
				for _, lineBytes := range []uint64{1, 3, 16, 64} {
					if lineBytes > cacheBytes {
						continue
					}

					n, err := BlockCount(NewSize(cacheBytes, B),
						NewSize(lineBytes, B))
					Expect(err).NotTo(HaveOccurred())
					Expect(n).To(Equal(cacheBytes / lineBytes))
					Expect(n * lineBytes).To(BeNumerically("<=", cacheBytes))
				}
			}
		})

		It("should reject a line larger than the cache", func() {
			_, err := BlockCount(NewSize(32, B), NewSize(64, B))
			Expect(err).To(HaveOccurred())
		})

		It("should reject a zero line", func() {
			_, err := BlockCount(NewSize(32, B), Size{})
			Expect(err).To(HaveOccurred())
		})
	})
})
