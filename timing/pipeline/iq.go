package pipeline

import (
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// Operand is one tagged source slot of an issue-queue entry. An absent slot
// is Ready with a zero value.
type Operand struct {
	// Present marks slots the opcode actually uses.
	Present bool
	// Ready is set once the value is captured.
	Ready bool
	// Tag is the producing physical register, meaningful while !Ready.
	Tag int
	// Value is the captured operand.
	Value int32
}

// ReadyOperand returns an absent, trivially ready slot.
func ReadyOperand() Operand {
	return Operand{Ready: true, Tag: -1}
}

// CCOperand is the condition-code source slot of a conditional branch.
type CCOperand struct {
	Present bool
	Ready   bool
	Tag     int
	Flags   emu.Flags
}

// IQEntry is one issue-queue entry.
type IQEntry struct {
	Allocated bool

	Op  insts.Op
	Imm int
	PC  int
	Seq uint64

	// DestPhys is the destination physical register, or -1.
	DestPhys int

	Src1 Operand
	Src2 Operand
	CC   CCOperand

	// Cross-references (-1 when absent).
	ROBIndex int
	LSQIndex int
	BQIndex  int

	// IncrPhys is the post-increment destination, or -1.
	IncrPhys int
}

// ready reports whether every present operand has been captured.
func (e *IQEntry) ready() bool {
	if e.Src1.Present && !e.Src1.Ready {
		return false
	}
	if e.Src2.Present && !e.Src2.Ready {
		return false
	}
	if e.CC.Present && !e.CC.Ready {
		return false
	}
	return true
}

// IssueQueue is the unified, unordered pool of dispatched instructions
// waiting for operands and a functional unit.
type IssueQueue struct {
	entries []IQEntry
}

// NewIssueQueue creates an issue queue with the given capacity.
func NewIssueQueue(capacity int) *IssueQueue {
	return &IssueQueue{entries: make([]IQEntry, capacity)}
}

// Occupancy returns the number of allocated entries.
func (q *IssueQueue) Occupancy() int {
	n := 0
	for i := range q.entries {
		if q.entries[i].Allocated {
			n++
		}
	}
	return n
}

// Full reports whether no slot is free.
func (q *IssueQueue) Full() bool {
	return q.Occupancy() == len(q.entries)
}

// Insert places an entry into any free slot.
func (q *IssueQueue) Insert(e IQEntry) bool {
	for i := range q.entries {
		if !q.entries[i].Allocated {
			e.Allocated = true
			q.entries[i] = e
			return true
		}
	}
	return false
}

// Wakeup captures operands for every waiting entry. Each invalid slot first
// snoops the forwarding bus (results completing this tick), then the
// physical register file (results from earlier ticks).
func (q *IssueQueue) Wakeup(bus *ForwardBus, rename *RenameTable, cc *CCFile) {
	for i := range q.entries {
		e := &q.entries[i]
		if !e.Allocated {
			continue
		}
		wakeupOperand(&e.Src1, bus, rename)
		wakeupOperand(&e.Src2, bus, rename)
		if e.CC.Present && !e.CC.Ready {
			if f, ok := bus.LookupFlags(e.CC.Tag); ok {
				e.CC.Flags = f
				e.CC.Ready = true
			} else if f, ok := cc.Value(e.CC.Tag); ok {
				e.CC.Flags = f
				e.CC.Ready = true
			}
		}
	}
}

func wakeupOperand(op *Operand, bus *ForwardBus, rename *RenameTable) {
	if !op.Present || op.Ready {
		return
	}
	if v, ok := bus.Lookup(op.Tag); ok {
		op.Value = v
		op.Ready = true
		return
	}
	if v, ok := rename.Value(op.Tag); ok {
		op.Value = v
		op.Ready = true
	}
}

// SelectReady returns the oldest ready entry targeting the given functional
// unit. Ties cannot occur: Seq is a monotonic dispatch counter.
func (q *IssueQueue) SelectReady(fu insts.FUKind) (int, bool) {
	best := -1
	for i := range q.entries {
		e := &q.entries[i]
		if !e.Allocated || insts.OpTraits(e.Op).FU != fu || !e.ready() {
			continue
		}
		if best < 0 || e.Seq < q.entries[best].Seq {
			best = i
		}
	}
	return best, best >= 0
}

// At returns the entry at slot i.
func (q *IssueQueue) At(i int) *IQEntry {
	return &q.entries[i]
}

// Remove clears slot i after issue.
func (q *IssueQueue) Remove(i int) {
	q.entries[i] = IQEntry{}
}

// SquashYounger discards entries dispatched after the mispredicted branch.
func (q *IssueQueue) SquashYounger(seq uint64) {
	for i := range q.entries {
		if q.entries[i].Allocated && q.entries[i].Seq > seq {
			q.entries[i] = IQEntry{}
		}
	}
}
