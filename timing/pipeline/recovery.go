package pipeline

// recover discards all state younger than the mispredicted branch and
// restarts fetch at the correct PC next tick. Rename state is rewound
// youngest-first: first the renamed-but-not-dispatched instruction in the
// decode latch, then the squashed ROB entries walked tail-to-branch.
func (p *Pipeline) recover(branchSeq uint64, correctPC int) {
	p.pc = correctPC
	p.fetchFromNextCycle = true
	p.fetchEnabled = true

	p.fetchLatch.Clear()
	p.rewindDecodeLatch()

	p.iq.SquashYounger(branchSeq)
	p.lsq.SquashYounger(branchSeq)
	p.bq.SquashYounger(branchSeq)

	p.squashFULatch(&p.intfu, branchSeq)
	p.squashFULatch(&p.mulfu, branchSeq)
	p.squashFULatch(&p.afu, branchSeq)
	p.squashFULatch(&p.mau, branchSeq)

	p.rob.SquashYounger(branchSeq, func(e *ROBEntry) {
		// Rewind in reverse allocation order: condition codes, then the
		// destination, then the post-increment destination.
		if e.HasCC {
			p.cc.Rewind(e.CCDest, e.PrevCCDest)
		}
		if e.HasDest {
			p.rename.Rewind(e.PhysDest, e.PrevPhysDest)
		}
		if e.HasIncr {
			p.rename.Rewind(e.IncrPhys, e.PrevIncrPhys)
		}
	})
}

// rewindDecodeLatch undoes the renames of an instruction that was decoded
// but never dispatched. Source bindings are kept: they are valid current
// mappings of unchanged architectural values.
func (p *Pipeline) rewindDecodeLatch() {
	l := &p.decodeLatch
	if !l.Valid {
		return
	}
	if l.CCDest >= 0 {
		p.cc.Rewind(l.CCDest, l.PrevCCDest)
	}
	if l.DestPhys >= 0 {
		p.rename.Rewind(l.DestPhys, l.PrevDestPhys)
	}
	if l.IncrPhys >= 0 {
		p.rename.Rewind(l.IncrPhys, l.PrevIncrPhys)
	}
	l.Clear()
}

func (p *Pipeline) squashFULatch(l *FULatch, branchSeq uint64) {
	if l.Valid && l.Seq > branchSeq {
		l.Clear()
	}
}
