package pipeline

import (
	"github.com/sarchlab/apexsim/insts"
)

// doFetch reads the instruction at the current PC into the fetch latch,
// consulting the BTB for conditional branches. Fetch skips the cycle after
// a misprediction flush and disables itself once HALT is fetched.
func (p *Pipeline) doFetch() {
	if p.fetchFromNextCycle {
		p.fetchFromNextCycle = false
		return
	}
	if !p.fetchEnabled {
		return
	}
	if p.fetchLatch.Valid {
		// Decode has not consumed the previous instruction.
		return
	}

	inst, ok := p.instAt(p.pc)
	if !ok {
		// Fetch can run off the end of code memory on a speculative wrong
		// path; stay idle until recovery redirects the PC.
		return
	}

	latch := FetchLatch{Valid: true, PC: p.pc, Inst: inst, BTBSlot: -1}

	if inst.Traits().Predicted {
		if slot, hit := p.btb.Find(p.pc); hit {
			latch.BTBSlot = slot
			if p.btb.Predict(inst.Op, slot) {
				latch.BTBHit = true
				latch.PredictedTarget = p.btb.Target(slot)
			}
		}
	}

	if latch.BTBHit {
		p.pc = latch.PredictedTarget
	} else {
		p.pc += 4
	}

	p.fetchLatch = latch

	if inst.Op == insts.OpHALT {
		p.fetchEnabled = false
	}
}

// doDecode renames the instruction in the fetch latch: sources are bound to
// their current mappings, the destination (and the post-increment second
// destination) get fresh physical registers, flag writers get a fresh
// condition-code slot, and unseen conditional branches get a BTB entry.
// Decode stalls when a needed free list is empty or dispatch has not
// drained the decode latch.
func (p *Pipeline) doDecode() {
	in := &p.fetchLatch
	if !in.Valid {
		return
	}
	if p.decodeLatch.Valid {
		p.stats.DecodeStalls++
		return
	}

	inst := in.Inst
	t := inst.Traits()

	if !p.canRename(&inst, t) {
		p.stats.DecodeStalls++
		return
	}

	out := DecodeLatch{
		Valid:           true,
		PC:              in.PC,
		Inst:            inst,
		BTBHit:          in.BTBHit,
		BTBSlot:         in.BTBSlot,
		PredictedTarget: in.PredictedTarget,
		DestPhys:        -1,
		PrevDestPhys:    -1,
		Src1Phys:        -1,
		Src2Phys:        -1,
		CCDest:          -1,
		PrevCCDest:      -1,
		CCSrc:           -1,
		IncrPhys:        -1,
		PrevIncrPhys:    -1,
	}

	if t.UsesRs1 {
		out.Src1Phys, _ = p.rename.BindSource(inst.Rs1, p.regFile.ReadReg(inst.Rs1))
	}
	if t.UsesRs2 {
		// When rs1 == rs2 the first bind already established the mapping.
		out.Src2Phys, _ = p.rename.BindSource(inst.Rs2, p.regFile.ReadReg(inst.Rs2))
	}
	if t.ReadsFlags {
		out.CCSrc = p.cc.Current()
	}
	if t.PostIncrement {
		out.IncrPhys, out.PrevIncrPhys, _ = p.rename.Allocate(inst.BaseReg())
	}
	if t.UsesRd {
		out.DestPhys, out.PrevDestPhys, _ = p.rename.Allocate(inst.Rd)
	}
	if t.WritesFlags {
		out.CCDest, out.PrevCCDest, _ = p.cc.Allocate()
	}

	if t.Predicted && in.BTBSlot < 0 {
		p.btb.Insert(in.PC, inst.Op)
	}

	p.decodeLatch = out
	in.Clear()
}

// canRename checks every free list the instruction needs before any
// allocation happens, so a stalled decode mutates nothing.
func (p *Pipeline) canRename(inst *insts.Instruction, t insts.Traits) bool {
	need := 0
	if t.UsesRd {
		need++
	}
	if t.PostIncrement {
		need++
	}
	if t.UsesRs1 && p.rename.CurrentMapping(inst.Rs1) < 0 {
		need++
	}
	if t.UsesRs2 && p.rename.CurrentMapping(inst.Rs2) < 0 && inst.Rs2 != inst.Rs1 {
		need++
	}
	if p.rename.FreeCount() < need {
		return false
	}
	if t.WritesFlags && p.cc.FreeCount() < 1 {
		return false
	}
	return true
}

// doDispatch atomically inserts the renamed instruction into the ROB and,
// as the opcode requires, the IQ, LSQ, and BQ. Source operands are captured
// here: valid physical registers (or this tick's forwarding bus) supply
// values; otherwise the entry waits on the tag.
func (p *Pipeline) doDispatch() {
	in := &p.decodeLatch
	if !in.Valid {
		return
	}

	inst := in.Inst
	t := inst.Traits()
	isMem := t.IsLoad || t.IsStore

	if p.rob.Full() ||
		(isMem && p.lsq.Full()) ||
		(t.IsBranch && p.bq.Full()) ||
		(t.FU != insts.FUNone && p.iq.Full()) {
		p.stats.DispatchStalls++
		return
	}

	seq := p.nextSeq
	p.nextSeq++

	lsqIdx := -1
	if isMem {
		entry := LSQEntry{
			IsStore:  t.IsStore,
			Op:       inst.Op,
			PC:       in.PC,
			Seq:      seq,
			DestPhys: -1,
			Data:     ReadyOperand(),
			ROBIndex: -1,
		}
		if t.IsLoad {
			entry.DestPhys = in.DestPhys
		} else {
			// Store data comes from rs1.
			entry.Data = p.captureOperand(in.Src1Phys)
		}
		lsqIdx, _ = p.lsq.Allocate(entry)
	}

	bqIdx := -1
	if t.IsBranch {
		bqIdx, _ = p.bq.Allocate(BQEntry{
			Op:              inst.Op,
			PC:              in.PC,
			Seq:             seq,
			PredictedTaken:  in.BTBHit,
			PredictedTarget: in.PredictedTarget,
			BTBSlot:         in.BTBSlot,
			ROBIndex:        -1,
		})
	}

	robEntry := ROBEntry{
		Op:           inst.Op,
		PC:           in.PC,
		Seq:          seq,
		HasDest:      t.UsesRd,
		ArchDest:     inst.Rd,
		PhysDest:     in.DestPhys,
		PrevPhysDest: in.PrevDestPhys,
		HasCC:        t.WritesFlags,
		CCDest:       in.CCDest,
		PrevCCDest:   in.PrevCCDest,
		HasIncr:      t.PostIncrement,
		IncrArch:     inst.BaseReg(),
		IncrPhys:     in.IncrPhys,
		PrevIncrPhys: in.PrevIncrPhys,
		LSQIndex:     lsqIdx,
		Completed:    t.FU == insts.FUNone,
	}
	robIdx, _ := p.rob.Allocate(robEntry)

	if lsqIdx >= 0 {
		p.lsq.At(lsqIdx).ROBIndex = robIdx
	}
	if bqIdx >= 0 {
		p.bq.At(bqIdx).ROBIndex = robIdx
	}

	if t.FU != insts.FUNone {
		e := IQEntry{
			Op:       inst.Op,
			Imm:      inst.Imm,
			PC:       in.PC,
			Seq:      seq,
			DestPhys: in.DestPhys,
			Src1:     ReadyOperand(),
			Src2:     ReadyOperand(),
			ROBIndex: robIdx,
			LSQIndex: lsqIdx,
			BQIndex:  bqIdx,
			IncrPhys: in.IncrPhys,
		}

		switch {
		case isMem:
			// The address unit needs only the base register: rs1 for
			// loads, rs2 for stores. Store data waits in the LSQ.
			base := in.Src1Phys
			if t.IsStore {
				base = in.Src2Phys
			}
			e.Src1 = p.captureOperand(base)
		case t.IsBranch:
			if t.ReadsFlags {
				e.CC = p.captureCC(in.CCSrc)
			} else {
				// JUMP/JALR read rs1.
				e.Src1 = p.captureOperand(in.Src1Phys)
			}
		default:
			if t.UsesRs1 {
				e.Src1 = p.captureOperand(in.Src1Phys)
			}
			if t.UsesRs2 {
				e.Src2 = p.captureOperand(in.Src2Phys)
			}
		}

		p.iq.Insert(e)
	}

	in.Clear()
}

// captureOperand snapshots a source operand at dispatch: the physical
// register file first, then results broadcast this tick, else the entry
// waits on the tag.
func (p *Pipeline) captureOperand(tag int) Operand {
	op := Operand{Present: true, Tag: tag}
	if v, ok := p.rename.Value(tag); ok {
		op.Value = v
		op.Ready = true
		return op
	}
	if v, ok := p.bus.Lookup(tag); ok {
		op.Value = v
		op.Ready = true
	}
	return op
}

// captureCC snapshots the condition-code source of a conditional branch.
func (p *Pipeline) captureCC(tag int) CCOperand {
	op := CCOperand{Present: true, Tag: tag}
	if f, ok := p.cc.Value(tag); ok {
		op.Flags = f
		op.Ready = true
		return op
	}
	if f, ok := p.bus.LookupFlags(tag); ok {
		op.Flags = f
		op.Ready = true
	}
	return op
}

// doIssue wakes waiting entries over the forwarding bus and moves, for each
// functional unit with an empty input latch, the oldest ready entry into it.
func (p *Pipeline) doIssue() {
	p.iq.Wakeup(p.bus, p.rename, p.cc)
	p.lsq.Wakeup(p.bus, p.rename)

	targets := []struct {
		fu    insts.FUKind
		latch *FULatch
	}{
		{insts.FUInt, &p.intfu},
		{insts.FUMul, &p.mulfu},
		{insts.FUAddr, &p.afu},
		{insts.FUBranch, &p.bfu},
	}

	for _, tgt := range targets {
		if tgt.latch.Valid {
			continue
		}
		idx, ok := p.iq.SelectReady(tgt.fu)
		if !ok {
			continue
		}
		e := p.iq.At(idx)
		*tgt.latch = FULatch{
			Valid:     true,
			Op:        e.Op,
			PC:        e.PC,
			Imm:       e.Imm,
			Seq:       e.Seq,
			DestPhys:  e.DestPhys,
			Src1Value: e.Src1.Value,
			Src2Value: e.Src2.Value,
			CCDest:    -1,
			CCFlags:   e.CC.Flags,
			ROBIndex:  e.ROBIndex,
			LSQIndex:  e.LSQIndex,
			BQIndex:   e.BQIndex,
			IncrPhys:  e.IncrPhys,
		}
		if robEntry := p.rob.At(e.ROBIndex); robEntry.HasCC {
			tgt.latch.CCDest = robEntry.CCDest
		}
		p.iq.Remove(idx)
	}
}

// doRetire commits the ROB head once its producing unit has reported back.
// One instruction retires per tick. Retirement copies the physical
// destination into the architectural register file, the condition-code slot
// into the architectural flags, and frees the displaced mappings.
func (p *Pipeline) doRetire() {
	head, _, ok := p.rob.Head()
	if !ok || !head.Completed {
		return
	}

	// The post-increment commits before the load destination so that when
	// both name the same architectural register, the load result wins.
	if head.HasIncr {
		if v, valid := p.rename.Value(head.IncrPhys); valid {
			p.regFile.WriteReg(head.IncrArch, v)
		} else {
			return
		}
	}
	if head.HasDest {
		if v, valid := p.rename.Value(head.PhysDest); valid {
			p.regFile.WriteReg(head.ArchDest, v)
		} else {
			return
		}
	}
	if head.HasCC {
		if f, valid := p.cc.Value(head.CCDest); valid {
			p.regFile.Flags = f
		} else {
			return
		}
	}

	if head.HasDest {
		p.rename.Release(head.PrevPhysDest)
	}
	if head.HasIncr {
		p.rename.Release(head.PrevIncrPhys)
	}
	if head.HasCC {
		p.cc.Release(head.PrevCCDest)
	}

	if head.Op == insts.OpHALT {
		p.halted = true
	}

	p.stats.Retired++
	p.rob.PopHead()
}
