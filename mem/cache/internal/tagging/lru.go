package tagging

const nilSlot = -1

// recencyList orders slots from the least recently used to the most recently
// used. It is a doubly linked list threaded through slot indices so that
// every operation is O(1).
type recencyList struct {
	prev   []int
	next   []int
	inList []bool
	head   int
	tail   int
	length int
}

func newRecencyList(numSlots int) recencyList {
	l := recencyList{
		prev:   make([]int, numSlots),
		next:   make([]int, numSlots),
		inList: make([]bool, numSlots),
	}

	l.reset()

	return l
}

func (l *recencyList) reset() {
	for i := range l.prev {
		l.prev[i] = nilSlot
		l.next[i] = nilSlot
		l.inList[i] = false
	}

	l.head = nilSlot
	l.tail = nilSlot
	l.length = 0
}

// front returns the least recently used slot.
func (l *recencyList) front() (int, bool) {
	if l.head == nilSlot {
		return 0, false
	}

	return l.head, true
}

func (l *recencyList) pushBack(slot int) {
	if l.inList[slot] {
		panic("slot already in recency list")
	}

	l.prev[slot] = l.tail
	l.next[slot] = nilSlot

	if l.tail == nilSlot {
		l.head = slot
	} else {
		l.next[l.tail] = slot
	}

	l.tail = slot
	l.inList[slot] = true
	l.length++
}

func (l *recencyList) remove(slot int) {
	if !l.inList[slot] {
		return
	}

	p, n := l.prev[slot], l.next[slot]

	if p == nilSlot {
		l.head = n
	} else {
		l.next[p] = n
	}

	if n == nilSlot {
		l.tail = p
	} else {
		l.prev[n] = p
	}

	l.prev[slot] = nilSlot
	l.next[slot] = nilSlot
	l.inList[slot] = false
	l.length--
}

func (l *recencyList) moveToBack(slot int) {
	if l.tail == slot {
		return
	}

	l.remove(slot)
	l.pushBack(slot)
}

func (l *recencyList) contains(slot int) bool {
	return l.inList[slot]
}

// slots lists the slots from the least to the most recently used.
func (l *recencyList) slots() []int {
	order := make([]int, 0, l.length)
	for s := l.head; s != nilSlot; s = l.next[s] {
		order = append(order, s)
	}

	return order
}
