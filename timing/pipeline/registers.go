// Package pipeline implements the out-of-order APEX pipeline model.
package pipeline

import (
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// FetchLatch holds state between Fetch and Decode.
type FetchLatch struct {
	// Valid indicates this latch contains an in-flight instruction.
	Valid bool

	// PC of the fetched instruction.
	PC int

	// Fetched instruction.
	Inst insts.Instruction

	// BTBHit is true when fetch predicted this branch taken.
	BTBHit bool

	// BTBSlot is the matched BTB slot, or -1 when the lookup missed.
	BTBSlot int

	// PredictedTarget is the BTB target fetch redirected to (BTBHit only).
	PredictedTarget int
}

// DecodeLatch holds the renamed instruction between Decode and Dispatch.
type DecodeLatch struct {
	// Valid indicates this latch contains an in-flight instruction.
	Valid bool

	// PC of this instruction.
	PC int

	// Decoded instruction.
	Inst insts.Instruction

	// Branch prediction state carried from fetch.
	BTBHit          bool
	BTBSlot         int
	PredictedTarget int

	// Renamed destination, or -1. PrevDestPhys is the mapping this
	// instruction displaced (freed at retire).
	DestPhys     int
	PrevDestPhys int

	// Renamed sources, or -1 when the slot is absent.
	Src1Phys int
	Src2Phys int

	// Condition-code rename: destination slot for flag writers, source
	// slot for conditional branches.
	CCDest     int
	PrevCCDest int
	CCSrc      int

	// Second destination for LOADP/STOREP (the incremented base).
	IncrPhys     int
	PrevIncrPhys int
}

// FULatch is the single-entry input latch of a functional unit.
type FULatch struct {
	// Valid indicates this latch contains an issued instruction.
	Valid bool

	// Op is the opcode to execute.
	Op insts.Op

	// PC of this instruction.
	PC int

	// Imm is the literal operand.
	Imm int

	// Seq is the dispatch-order sequence number.
	Seq uint64

	// DestPhys is the destination physical register, or -1.
	DestPhys int

	// Captured source operand values.
	Src1Value int32
	Src2Value int32

	// CCDest is the condition-code destination slot, or -1.
	CCDest int

	// CCFlags is the captured flag source for conditional branches.
	CCFlags emu.Flags

	// Cross-references into the ROB, LSQ, and BQ (-1 when absent).
	ROBIndex int
	LSQIndex int
	BQIndex  int

	// IncrPhys is the post-increment destination, or -1.
	IncrPhys int

	// Addr and StoreData are used by the memory access unit.
	Addr      int
	StoreData int32
}

// Clear resets the fetch latch.
func (l *FetchLatch) Clear() {
	*l = FetchLatch{BTBSlot: -1}
}

// Clear resets the decode latch.
func (l *DecodeLatch) Clear() {
	*l = DecodeLatch{
		BTBSlot:      -1,
		DestPhys:     -1,
		PrevDestPhys: -1,
		Src1Phys:     -1,
		Src2Phys:     -1,
		CCDest:       -1,
		PrevCCDest:   -1,
		CCSrc:        -1,
		IncrPhys:     -1,
		PrevIncrPhys: -1,
	}
}

// Clear resets a functional-unit latch.
func (l *FULatch) Clear() {
	*l = FULatch{
		DestPhys: -1,
		CCDest:   -1,
		ROBIndex: -1,
		LSQIndex: -1,
		BQIndex:  -1,
		IncrPhys: -1,
	}
}
