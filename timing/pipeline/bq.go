package pipeline

import "github.com/sarchlab/apexsim/insts"

// BQEntry is one branch-queue entry, mirroring an in-flight branch.
type BQEntry struct {
	Valid bool

	Op  insts.Op
	PC  int
	Seq uint64

	// Prediction carried from fetch.
	PredictedTaken  bool
	PredictedTarget int

	// BTBSlot is the slot matched at fetch, or -1.
	BTBSlot int

	// ROBIndex cross-references the reorder-buffer entry.
	ROBIndex int

	// Done marks a resolved branch awaiting head pop.
	Done bool
}

// BranchQueue is the in-order ring of in-flight branches. It mirrors the
// age of branches in the ROB and carries prediction metadata to the branch
// unit.
type BranchQueue struct {
	entries []BQEntry
	head    int
	count   int
}

// NewBranchQueue creates a branch queue with the given capacity.
func NewBranchQueue(capacity int) *BranchQueue {
	return &BranchQueue{entries: make([]BQEntry, capacity)}
}

// Size returns the number of occupied entries.
func (q *BranchQueue) Size() int {
	return q.count
}

// Full reports whether the queue has no room.
func (q *BranchQueue) Full() bool {
	return q.count == len(q.entries)
}

// Allocate inserts an entry at the tail and returns its ring index.
func (q *BranchQueue) Allocate(e BQEntry) (int, bool) {
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
func (q *BranchQueue) At(idx int) *BQEntry {
	return &q.entries[idx]
}

// MarkDone flags a resolved branch.
func (q *BranchQueue) MarkDone(idx int) {
	q.entries[idx].Done = true
}

// Drain pops resolved entries from the head.
func (q *BranchQueue) Drain() {
	for q.count > 0 && q.entries[q.head].Done {
		q.entries[q.head] = BQEntry{}
		q.head = (q.head + 1) % len(q.entries)
		q.count--
	}
}

// SquashYounger removes entries dispatched after the mispredicted branch.
func (q *BranchQueue) SquashYounger(seq uint64) {
	for q.count > 0 {
		tail := (q.head + q.count - 1) % len(q.entries)
		if q.entries[tail].Seq <= seq {
			return
		}
		q.entries[tail] = BQEntry{}
		q.count--
	}
}
