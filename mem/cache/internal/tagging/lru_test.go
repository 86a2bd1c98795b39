package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("recencyList", func() {
	var l recencyList

	BeforeEach(func() {
		l = newRecencyList(5)
	})

	It("should be empty", func() {
		_, ok := l.front()
		Expect(ok).To(BeFalse())
		Expect(l.slots()).To(BeEmpty())
	})

	It("should keep insertion order", func() {
		l.pushBack(3)
		l.pushBack(0)
		l.pushBack(4)

		front, _ := l.front()
		Expect(front).To(Equal(3))
		Expect(l.slots()).To(Equal([]int{3, 0, 4}))
	})

	It("should move a slot to the back", func() {
		l.pushBack(0)
		l.pushBack(1)
		l.pushBack(2)

		l.moveToBack(1)
		Expect(l.slots()).To(Equal([]int{0, 2, 1}))

		l.moveToBack(0)
		Expect(l.slots()).To(Equal([]int{2, 1, 0}))

		l.moveToBack(0)
		Expect(l.slots()).To(Equal([]int{2, 1, 0}))
	})

	It("should remove from any position", func() {
		for i := 0; i < 5; i++ {
			l.pushBack(i)
		}

		l.remove(0)
		l.remove(4)
		l.remove(2)
		l.remove(2)

		Expect(l.slots()).To(Equal([]int{1, 3}))
		Expect(l.length).To(Equal(2))
		Expect(l.contains(2)).To(BeFalse())
	})

	It("should refuse to insert a slot twice", func() {
		l.pushBack(1)
		Expect(func() { l.pushBack(1) }).To(Panic())
	})
})
