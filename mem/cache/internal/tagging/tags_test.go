package tagging

import (
	"github.com/sarchlab/cohsim/mem/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LineTable", func() {
	var (
		tags  *LineTable
		owner cache.Owner
	)

	BeforeEach(func() {
		tags = NewLineTable(4, NewLRUVictimFinder())
		owner = cache.Owner{ChipID: 0, CoreID: 1}
	})

	It("should start empty", func() {
		Expect(tags.NumBlocks()).To(Equal(4))
		Expect(tags.NumValid()).To(Equal(0))
		Expect(tags.LRUOrder()).To(BeEmpty())

		_, found := tags.Lookup(0)
		Expect(found).To(BeFalse())
	})

	It("should fill free slots in index order", func() {
		for page := uint64(10); page < 14; page++ {
			block, _, evicted := tags.Allocate(page, cache.Exclusive, owner)
			Expect(evicted).To(BeFalse())
			Expect(block.SlotID).To(Equal(int(page - 10)))
		}

		Expect(tags.LRUOrder()).To(Equal([]int{0, 1, 2, 3}))
	})

	It("should lookup an allocated page", func() {
		tags.Allocate(7, cache.Modified, owner)

		block, found := tags.Lookup(7)
		Expect(found).To(BeTrue())
		Expect(block.SlotID).To(Equal(0))
		Expect(block.State).To(Equal(cache.Modified))
		Expect(block.Owner).To(Equal(owner))
	})

	It("should not find a page whose line was invalidated", func() {
		block, _, _ := tags.Allocate(7, cache.Shared, owner)
		tags.Invalidate(block.SlotID)

		_, found := tags.Lookup(7)
		Expect(found).To(BeFalse())
		Expect(tags.Block(block.SlotID).State).To(Equal(cache.Invalid))
		Expect(tags.LRUOrder()).To(BeEmpty())
	})

	It("should evict the first allocated page after capacity+1 allocations",
		func() {
			first, _, _ := tags.Allocate(100, cache.Exclusive, owner)
			for page := uint64(101); page < 104; page++ {
				tags.Allocate(page, cache.Exclusive, owner)
			}

			block, victim, evicted := tags.Allocate(
				104, cache.Exclusive, owner)
			Expect(evicted).To(BeTrue())
			Expect(victim.Page).To(Equal(uint64(100)))
			Expect(block.SlotID).To(Equal(first.SlotID))
			Expect(tags.LRUOrder()).To(Equal([]int{1, 2, 3, 0}))

			_, found := tags.Lookup(100)
			Expect(found).To(BeFalse())
		})

	It("should protect a visited line from eviction", func() {
		for page := uint64(0); page < 4; page++ {
			tags.Allocate(page, cache.Exclusive, owner)
		}

		tags.Visit(0)
		Expect(tags.LRUOrder()).To(Equal([]int{1, 2, 3, 0}))

		block, victim, evicted := tags.Allocate(9, cache.Modified, owner)
		Expect(evicted).To(BeTrue())
		Expect(victim.Page).To(Equal(uint64(1)))
		Expect(block.SlotID).To(Equal(1))
	})

	It("should return the evicted line's state and owner", func() {
		other := cache.Owner{ChipID: 0, CoreID: 3}
		tags.Allocate(0, cache.Modified, other)
		for page := uint64(1); page < 4; page++ {
			tags.Allocate(page, cache.Exclusive, owner)
		}

		_, victim, evicted := tags.Allocate(5, cache.Exclusive, owner)
		Expect(evicted).To(BeTrue())
		Expect(victim.State).To(Equal(cache.Modified))
		Expect(victim.Owner).To(Equal(other))
	})

	It("should reuse an invalidated slot before evicting", func() {
		for page := uint64(0); page < 4; page++ {
			tags.Allocate(page, cache.Exclusive, owner)
		}

		tags.Invalidate(2)

		block, _, evicted := tags.Allocate(8, cache.Exclusive, owner)
		Expect(evicted).To(BeFalse())
		Expect(block.SlotID).To(Equal(2))
		Expect(tags.LRUOrder()).To(Equal([]int{0, 1, 3, 2}))
	})

	It("should update state and owner without touching the LRU order", func() {
		tags.Allocate(0, cache.Exclusive, owner)
		tags.Allocate(1, cache.Exclusive, owner)

		block, _ := tags.Lookup(0)
		block.State = cache.Shared
		block.Owner = cache.Owner{CoreID: 2}
		tags.Update(block)

		Expect(tags.Block(0).State).To(Equal(cache.Shared))
		Expect(tags.Block(0).Owner.CoreID).To(Equal(2))
		Expect(tags.LRUOrder()).To(Equal([]int{0, 1}))
	})

	It("should invalidate through an update to the invalid state", func() {
		tags.Allocate(0, cache.Exclusive, owner)

		block, _ := tags.Lookup(0)
		block.State = cache.Invalid
		tags.Update(block)

		Expect(tags.Block(0).IsValid).To(BeFalse())
		Expect(tags.NumValid()).To(Equal(0))
	})

	It("should panic when a page is allocated twice", func() {
		tags.Allocate(3, cache.Exclusive, owner)

		Expect(func() {
			tags.Allocate(3, cache.Exclusive, owner)
		}).To(Panic())
	})

	It("should panic when visiting a free slot", func() {
		Expect(func() { tags.Visit(1) }).To(Panic())
	})

	It("should keep the LRU order equal to the valid slots", func() {
		pages := []uint64{5, 6, 5, 7, 8, 9, 6, 10, 5}
		for _, page := range pages {
			if block, found := tags.Lookup(page); found {
				tags.Visit(block.SlotID)
				continue
			}

			tags.Allocate(page, cache.Exclusive, owner)
		}

		valid := 0
		for _, block := range tags.Blocks() {
			if block.IsValid {
				valid++
				Expect(tags.LRUOrder()).To(ContainElement(block.SlotID))
			}
		}
		Expect(tags.LRUOrder()).To(HaveLen(valid))
	})

	It("should reset", func() {
		tags.Allocate(0, cache.Modified, owner)
		tags.Reset()

		Expect(tags.NumValid()).To(Equal(0))
		Expect(tags.Block(0).IsValid).To(BeFalse())
	})
})
