package pipeline

import "github.com/sarchlab/apexsim/insts"

// ROBEntry is one reorder-buffer entry.
type ROBEntry struct {
	Op  insts.Op
	PC  int
	Seq uint64

	// Destination rename bookkeeping. PrevPhysDest is freed at retire.
	HasDest      bool
	ArchDest     int
	PhysDest     int
	PrevPhysDest int

	// Condition-code rename bookkeeping.
	HasCC      bool
	CCDest     int
	PrevCCDest int

	// Post-increment second destination (LOADP/STOREP).
	HasIncr      bool
	IncrArch     int
	IncrPhys     int
	PrevIncrPhys int

	// LSQIndex cross-references the load/store queue entry, or -1.
	LSQIndex int

	// Completed is set when the producing unit reports back.
	Completed bool
}

// ROB is the reorder buffer: a FIFO ring holding instructions in program
// order. The head retires; the tail allocates; recovery truncates the tail
// back to the mispredicted branch.
type ROB struct {
	entries []ROBEntry
	head    int
	count   int
}

// NewROB creates a reorder buffer with the given capacity.
func NewROB(capacity int) *ROB {
	return &ROB{entries: make([]ROBEntry, capacity)}
}

// Size returns the number of occupied entries.
func (r *ROB) Size() int {
	return r.count
}

// Capacity returns the ring capacity.
func (r *ROB) Capacity() int {
	return len(r.entries)
}

// Full reports whether the buffer has no room.
func (r *ROB) Full() bool {
	return r.count == len(r.entries)
}

// Empty reports whether the buffer has no entries.
func (r *ROB) Empty() bool {
	return r.count == 0
}

// Allocate inserts an entry at the tail and returns its ring index.
func (r *ROB) Allocate(e ROBEntry) (int, bool) {
	if r.Full() {
		return -1, false
	}
	idx := (r.head + r.count) % len(r.entries)
	r.entries[idx] = e
	r.count++
	return idx, true
}

// Head returns the oldest entry and its ring index.
func (r *ROB) Head() (*ROBEntry, int, bool) {
	if r.count == 0 {
		return nil, -1, false
	}
	return &r.entries[r.head], r.head, true
}

// HeadIndex returns the ring index of the oldest entry, or -1.
func (r *ROB) HeadIndex() int {
	if r.count == 0 {
		return -1
	}
	return r.head
}

// At returns the entry at a ring index.
func (r *ROB) At(idx int) *ROBEntry {
	return &r.entries[idx]
}

// PopHead removes the oldest entry.
func (r *ROB) PopHead() {
	if r.count == 0 {
		return
	}
	r.head = (r.head + 1) % len(r.entries)
	r.count--
}

// SquashYounger removes all entries with Seq > seq, youngest first, calling
// fn on each so the caller can rewind rename state.
func (r *ROB) SquashYounger(seq uint64, fn func(*ROBEntry)) {
	for r.count > 0 {
		tail := (r.head + r.count - 1) % len(r.entries)
		if r.entries[tail].Seq <= seq {
			return
		}
		if fn != nil {
			fn(&r.entries[tail])
		}
		r.count--
	}
}
