package pipeline

import (
	"fmt"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// doIntFU executes the one-cycle integer unit: arithmetic, logic, moves,
// and compares. Results and condition codes go to the physical files and
// the forwarding bus; the ROB entry is marked complete.
func (p *Pipeline) doIntFU() {
	in := &p.intfu
	if !in.Valid {
		return
	}

	var (
		result   int32
		hasValue bool
		flags    emu.Flags
	)

	switch in.Op {
	case insts.OpADD, insts.OpSUB, insts.OpDIV,
		insts.OpAND, insts.OpOR, insts.OpXOR:
		v, err := emu.ALUOp(in.Op, in.Src1Value, in.Src2Value)
		if err != nil {
			p.fail(fmt.Errorf("%s at %d: %w", in.Op, in.PC, err))
			return
		}
		result, hasValue = v, true
		flags = emu.FlagsFor(v)

	case insts.OpADDL:
		result, hasValue = in.Src1Value+int32(in.Imm), true
		flags = emu.FlagsFor(result)

	case insts.OpSUBL:
		result, hasValue = in.Src1Value-int32(in.Imm), true
		flags = emu.FlagsFor(result)

	case insts.OpMOVC:
		result, hasValue = int32(in.Imm), true
		flags = emu.FlagsFor(result)

	case insts.OpCMP:
		flags = emu.FlagsForCompare(in.Src1Value, in.Src2Value)

	case insts.OpCML:
		flags = emu.FlagsForCompare(in.Src1Value, int32(in.Imm))
	}

	if hasValue && in.DestPhys >= 0 {
		p.rename.SetValue(in.DestPhys, result)
		p.bus.Publish(in.DestPhys, result)
	}
	if in.CCDest >= 0 {
		p.cc.SetValue(in.CCDest, flags)
		p.bus.PublishFlags(in.CCDest, flags)
	}

	p.rob.At(in.ROBIndex).Completed = true
	in.Clear()
}

// doMulFU executes the multiply unit.
func (p *Pipeline) doMulFU() {
	in := &p.mulfu
	if !in.Valid {
		return
	}

	result := in.Src1Value * in.Src2Value
	flags := emu.FlagsFor(result)

	p.rename.SetValue(in.DestPhys, result)
	p.bus.Publish(in.DestPhys, result)
	if in.CCDest >= 0 {
		p.cc.SetValue(in.CCDest, flags)
		p.bus.PublishFlags(in.CCDest, flags)
	}

	p.rob.At(in.ROBIndex).Completed = true
	in.Clear()
}

// doAFU executes the address unit: it computes the memory address into the
// LSQ entry and, for the post-increment forms, produces base+4 as a second
// destination on the forwarding bus.
func (p *Pipeline) doAFU() {
	in := &p.afu
	if !in.Valid {
		return
	}

	addr := int(in.Src1Value) + in.Imm
	entry := p.lsq.At(in.LSQIndex)
	entry.Addr = addr
	entry.AddrValid = true

	if in.IncrPhys >= 0 {
		incremented := in.Src1Value + 4
		p.rename.SetValue(in.IncrPhys, incremented)
		p.bus.Publish(in.IncrPhys, incremented)
	}

	in.Clear()
}

// doBFU resolves branches against their prediction. On a misprediction it
// redirects the PC and triggers recovery; either way, for a conditional
// branch that has a BTB slot, the slot's predictor and target are updated
// (JUMP and JALR leave the BTB untouched). JALR writes its link address here.
func (p *Pipeline) doBFU() {
	in := &p.bfu
	if !in.Valid {
		return
	}

	t := insts.OpTraits(in.Op)
	bqEntry := p.bq.At(in.BQIndex)

	var actualTaken bool
	var actualTarget int
	switch in.Op {
	case insts.OpJUMP, insts.OpJALR:
		actualTaken = true
		actualTarget = int(in.Src1Value) + in.Imm
	default:
		actualTaken = in.CCFlags.BranchTaken(in.Op)
		actualTarget = in.PC + in.Imm
	}

	if in.Op == insts.OpJALR {
		link := int32(in.PC + 4)
		p.rename.SetValue(in.DestPhys, link)
		p.bus.Publish(in.DestPhys, link)
	}

	if t.ReadsFlags {
		if slot, ok := p.btb.Find(in.PC); ok {
			p.btb.SetTarget(slot, actualTarget)
			p.btb.Update(slot, actualTaken)
		}
	}

	p.rob.At(in.ROBIndex).Completed = true
	p.bq.MarkDone(in.BQIndex)
	p.stats.Branches++

	mispredicted := actualTaken != bqEntry.PredictedTaken ||
		(actualTaken && bqEntry.PredictedTarget != actualTarget)
	if mispredicted {
		correctPC := in.PC + 4
		if actualTaken {
			correctPC = actualTarget
		}
		p.stats.Mispredictions++
		p.recover(in.Seq, correctPC)
	}

	in.Clear()
}

// doMemory executes the memory access unit on the operation the LSQ issued
// last tick. Stores write data memory; loads read it and broadcast the
// value.
func (p *Pipeline) doMemory() {
	in := &p.mau
	if !in.Valid {
		return
	}

	entry := p.lsq.At(in.LSQIndex)

	if insts.OpTraits(in.Op).IsStore {
		if err := p.memory.Write(in.Addr, in.StoreData); err != nil {
			p.fail(fmt.Errorf("%s at %d: %w", in.Op, in.PC, err))
			return
		}
	} else {
		v, err := p.memory.Read(in.Addr)
		if err != nil {
			p.fail(fmt.Errorf("%s at %d: %w", in.Op, in.PC, err))
			return
		}
		p.rename.SetValue(in.DestPhys, v)
		p.bus.Publish(in.DestPhys, v)
	}

	entry.Done = true
	p.rob.At(in.ROBIndex).Completed = true
	in.Clear()
}

// doLSQIssue applies the memory-ordering rules and hands at most one
// operation to the memory access unit:
//   - a store issues only when it is both the LSQ head and the ROB head,
//     with address and data valid;
//   - a load issues once its address is known and every older store address
//     is known; a load whose address matches an older store takes the
//     store's value directly over the forwarding path.
func (p *Pipeline) doLSQIssue() {
	p.lsq.forEachAge(func(idx int, e *LSQEntry) bool {
		if e.Done || e.Issued || !e.AddrValid {
			return true
		}

		if e.IsStore {
			if idx != p.lsq.HeadIndex() || e.ROBIndex != p.rob.HeadIndex() {
				return true
			}
			if !e.Data.Ready {
				return true
			}
			if !p.mau.Valid {
				p.issueToMAU(e, idx)
			}
			return true
		}

		// Load.
		if !p.lsq.OlderStoresKnown(idx) {
			return true
		}
		if storeIdx, ok := p.lsq.MatchingOlderStore(idx); ok {
			store := p.lsq.At(storeIdx)
			if !store.Data.Ready {
				return true
			}
			p.rename.SetValue(e.DestPhys, store.Data.Value)
			p.bus.Publish(e.DestPhys, store.Data.Value)
			p.rob.At(e.ROBIndex).Completed = true
			e.Done = true
			return true
		}
		if !p.mau.Valid {
			p.issueToMAU(e, idx)
		}
		return true
	})
}

func (p *Pipeline) issueToMAU(e *LSQEntry, idx int) {
	p.mau = FULatch{
		Valid:     true,
		Op:        e.Op,
		PC:        e.PC,
		Seq:       e.Seq,
		DestPhys:  e.DestPhys,
		CCDest:    -1,
		ROBIndex:  e.ROBIndex,
		LSQIndex:  idx,
		BQIndex:   -1,
		IncrPhys:  -1,
		Addr:      e.Addr,
		StoreData: e.Data.Value,
	}
	e.Issued = true
}
