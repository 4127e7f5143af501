package pipeline

import "github.com/sarchlab/apexsim/insts"

// LSQEntry is one load/store-queue entry.
type LSQEntry struct {
	Valid bool

	IsStore bool
	Op      insts.Op
	PC      int
	Seq     uint64

	// AddrValid is set once the address unit computes Addr.
	AddrValid bool
	Addr      int

	// DestPhys is the load destination physical register, or -1.
	DestPhys int

	// Data is the store source operand, captured at dispatch or woken over
	// the forwarding bus.
	Data Operand

	// ROBIndex cross-references the reorder-buffer entry.
	ROBIndex int

	// Issued marks an entry handed to the memory access unit.
	Issued bool

	// Done marks a finished entry awaiting head pop.
	Done bool
}

// LSQ is the load/store queue: a FIFO ring in program order used for memory
// disambiguation. Stores leave only from the head, gated on also being the
// ROB head; loads may complete out of order once every older store address
// is known.
type LSQ struct {
	entries []LSQEntry
	head    int
	count   int
}

// NewLSQ creates a load/store queue with the given capacity.
func NewLSQ(capacity int) *LSQ {
	return &LSQ{entries: make([]LSQEntry, capacity)}
}

// Size returns the number of occupied entries.
func (q *LSQ) Size() int {
	return q.count
}

// Full reports whether the queue has no room.
func (q *LSQ) Full() bool {
	return q.count == len(q.entries)
}

// Allocate inserts an entry at the tail and returns its ring index.
func (q *LSQ) Allocate(e LSQEntry) (int, bool) {
	if q.Full() {
		return -1, false
	}
	idx := (q.head + q.count) % len(q.entries)
	e.Valid = true
	q.entries[idx] = e
	q.count++
	return idx, true
}

// At returns the entry at a ring index.
func (q *LSQ) At(idx int) *LSQEntry {
	return &q.entries[idx]
}

// HeadIndex returns the ring index of the oldest entry, or -1.
func (q *LSQ) HeadIndex() int {
	if q.count == 0 {
		return -1
	}
	return q.head
}

// Wakeup captures pending store data from the forwarding bus or the
// physical register file.
func (q *LSQ) Wakeup(bus *ForwardBus, rename *RenameTable) {
	for i := 0; i < q.count; i++ {
		e := &q.entries[(q.head+i)%len(q.entries)]
		if e.IsStore {
			wakeupOperand(&e.Data, bus, rename)
		}
	}
}

// OlderStoresKnown reports whether every store older than the entry at idx
// has a computed address. Address-unknown older stores block younger loads.
func (q *LSQ) OlderStoresKnown(idx int) bool {
	for i := 0; i < q.count; i++ {
		j := (q.head + i) % len(q.entries)
		if j == idx {
			return true
		}
		if q.entries[j].IsStore && !q.entries[j].AddrValid {
			return false
		}
	}
	return true
}

// MatchingOlderStore returns the ring index of the youngest store older
// than the entry at idx with the same address.
func (q *LSQ) MatchingOlderStore(idx int) (int, bool) {
	match := -1
	for i := 0; i < q.count; i++ {
		j := (q.head + i) % len(q.entries)
		if j == idx {
			break
		}
		e := &q.entries[j]
		if e.IsStore && e.AddrValid && e.Addr == q.entries[idx].Addr {
			match = j
		}
	}
	return match, match >= 0
}

// Drain pops finished entries from the head.
func (q *LSQ) Drain() {
	for q.count > 0 && q.entries[q.head].Done {
		q.entries[q.head] = LSQEntry{}
		q.head = (q.head + 1) % len(q.entries)
		q.count--
	}
}

// SquashYounger removes entries dispatched after the mispredicted branch.
func (q *LSQ) SquashYounger(seq uint64) {
	for q.count > 0 {
		tail := (q.head + q.count - 1) % len(q.entries)
		if q.entries[tail].Seq <= seq {
			return
		}
		q.entries[tail] = LSQEntry{}
		q.count--
	}
}

// forEachAge calls fn on every occupied entry oldest-first, passing the
// ring index. Iteration stops when fn returns false.
func (q *LSQ) forEachAge(fn func(idx int, e *LSQEntry) bool) {
	for i := 0; i < q.count; i++ {
		j := (q.head + i) % len(q.entries)
		if !fn(j, &q.entries[j]) {
			return
		}
	}
}
