package pipeline

import (
	"fmt"
	"io"
)

// Dump writes a per-tick snapshot of the pipeline: latch contents, queue
// occupancies, the architectural register file, and the flags. The format
// is diagnostic output, not a stable interface.
func (p *Pipeline) Dump(w io.Writer) {
	fmt.Fprintf(w, "--- cycle %d ---\n", p.stats.Cycles)

	if p.fetchLatch.Valid {
		fmt.Fprintf(w, "Fetch    : [%04d] %s\n", p.fetchLatch.PC, p.fetchLatch.Inst.String())
	} else {
		fmt.Fprintf(w, "Fetch    : empty\n")
	}
	if p.decodeLatch.Valid {
		fmt.Fprintf(w, "Decode   : [%04d] %s\n", p.decodeLatch.PC, p.decodeLatch.Inst.String())
	} else {
		fmt.Fprintf(w, "Decode   : empty\n")
	}
	dumpFULatch(w, "IntFU", &p.intfu)
	dumpFULatch(w, "MulFU", &p.mulfu)
	dumpFULatch(w, "AFU", &p.afu)
	dumpFULatch(w, "BFU", &p.bfu)
	dumpFULatch(w, "MAU", &p.mau)

	fmt.Fprintf(w, "IQ=%d ROB=%d LSQ=%d BQ=%d free-phys=%d free-cc=%d\n",
		p.iq.Occupancy(), p.rob.Size(), p.lsq.Size(), p.bq.Size(),
		p.rename.FreeCount(), p.cc.FreeCount())

	fmt.Fprintf(w, "Regs     :")
	for i, v := range p.regFile.R {
		fmt.Fprintf(w, " R%d=%d", i, v)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Flags    : Z=%t P=%t N=%t\n",
		p.regFile.Flags.Z, p.regFile.Flags.P, p.regFile.Flags.N)
}

func dumpFULatch(w io.Writer, name string, l *FULatch) {
	if l.Valid {
		fmt.Fprintf(w, "%-9s: [%04d] %s\n", name, l.PC, l.Op)
	} else {
		fmt.Fprintf(w, "%-9s: empty\n", name)
	}
}
