// Package pipeline implements the out-of-order APEX pipeline model.
//
// The engine is organized as cooperating stages connected by single-entry
// latches and shared structures:
//   - Fetch: PC update, code-memory read, BTB lookup and speculative redirect
//   - Decode/Rename: physical-register and condition-code allocation
//   - Dispatch: in-order insertion into IQ, LSQ, BQ, and ROB
//   - Issue: operand wakeup over the forwarding bus, oldest-first select
//   - IntFU / MulFU / AFU / BFU / MAU: execution
//   - Retire: in-order commit from the ROB head
//
// Stages advance once per Tick in reverse program order, so each stage
// consumes the latch its predecessor produced in the previous tick. The
// forwarding bus is the one intra-tick path: issue-queue wakeup in tick T
// observes functional-unit completions of tick T.
package pipeline

import (
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/config"
)

// Pipeline is the out-of-order engine. All mutable state is owned by the
// engine and mutated by exactly one stage function per tick; the tick is
// the serialization point.
type Pipeline struct {
	cfg *config.Config

	// Architectural state. Retirement is the only writer.
	regFile *emu.RegFile
	memory  *emu.Memory

	// Code memory.
	code []insts.Instruction

	// Shared structures.
	rename *RenameTable
	cc     *CCFile
	rob    *ROB
	iq     *IssueQueue
	lsq    *LSQ
	bq     *BranchQueue
	btb    *BTB
	bus    *ForwardBus

	// Latches.
	fetchLatch  FetchLatch
	decodeLatch DecodeLatch
	intfu       FULatch
	mulfu       FULatch
	afu         FULatch
	bfu         FULatch
	mau         FULatch

	// Fetch state.
	pc                 int
	fetchEnabled       bool
	fetchFromNextCycle bool

	// Dispatch-order counter.
	nextSeq uint64

	// Execution state.
	halted bool
	err    error

	stats Stats
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithConfig sets the structural configuration.
func WithConfig(cfg *config.Config) PipelineOption {
	return func(p *Pipeline) {
		p.cfg = cfg
	}
}

// NewPipeline creates an out-of-order pipeline over the given architectural
// register file and data memory.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		regFile: regFile,
		memory:  memory,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg == nil {
		p.cfg = config.DefaultConfig()
	}
	p.reset()
	return p
}

func (p *Pipeline) reset() {
	p.rename = NewRenameTable(insts.NumArchRegs, p.cfg.NumPhysRegs)
	p.cc = NewCCFile(p.cfg.NumCCRegs)
	p.rob = NewROB(p.cfg.ROBSize)
	p.iq = NewIssueQueue(p.cfg.IQSize)
	p.lsq = NewLSQ(p.cfg.LSQSize)
	p.bq = NewBranchQueue(p.cfg.BQSize)
	p.btb = NewBTB(p.cfg.BTBSlots)
	p.bus = NewForwardBus()

	p.fetchLatch.Clear()
	p.decodeLatch.Clear()
	p.intfu.Clear()
	p.mulfu.Clear()
	p.afu.Clear()
	p.bfu.Clear()
	p.mau.Clear()

	p.pc = insts.CodeBase
	p.fetchEnabled = true
	p.fetchFromNextCycle = false
	p.nextSeq = 0
	p.halted = false
	p.err = nil
	p.stats = Stats{}
}

// LoadProgram sets the code memory and resets all pipeline state.
func (p *Pipeline) LoadProgram(code []insts.Instruction) {
	p.code = code
	p.reset()
}

// Reset clears all pipeline state, keeping the loaded program.
func (p *Pipeline) Reset() {
	p.reset()
}

// PC returns the current fetch program counter.
func (p *Pipeline) PC() int { return p.pc }

// Halted reports whether HALT has retired or a program error occurred.
func (p *Pipeline) Halted() bool { return p.halted || p.err != nil }

// Err returns the runtime program error, if any.
func (p *Pipeline) Err() error { return p.err }

// RegFile returns the architectural register file.
func (p *Pipeline) RegFile() *emu.RegFile { return p.regFile }

// Memory returns the data memory.
func (p *Pipeline) Memory() *emu.Memory { return p.memory }

// Stats holds pipeline performance statistics.
type Stats struct {
	// Cycles is the number of ticks simulated.
	Cycles uint64
	// Retired is the number of instructions committed.
	Retired uint64
	// Branches is the number of branches resolved.
	Branches uint64
	// Mispredictions is the number of branch mispredictions.
	Mispredictions uint64
	// DecodeStalls counts ticks decode could not admit an instruction.
	DecodeStalls uint64
	// DispatchStalls counts ticks dispatch could not admit an instruction.
	DispatchStalls uint64
}

// CPI returns cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired)
}

// PredictionAccuracy returns the fraction of correctly predicted branches
// as a percentage.
func (s Stats) PredictionAccuracy() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Branches-s.Mispredictions) / float64(s.Branches) * 100
}

// Stats returns pipeline performance statistics.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Tick advances the pipeline by one cycle. Stages run in reverse program
// order so every stage observes its input latch as the previous tick left
// it.
func (p *Pipeline) Tick() {
	if p.Halted() {
		return
	}

	p.stats.Cycles++
	p.bus.Reset()

	p.doRetire()
	p.doMemory()
	p.doLSQIssue()
	p.doBFU()
	p.doAFU()
	p.doMulFU()
	p.doIntFU()
	p.doIssue()
	p.doDispatch()
	p.doDecode()
	p.doFetch()

	p.bq.Drain()
	p.lsq.Drain()
}

// Run executes ticks until the program halts or errors.
// Returns the runtime program error, if any.
func (p *Pipeline) Run() error {
	for !p.Halted() {
		p.Tick()
	}
	return p.err
}

// RunCycles executes at most n ticks. Returns true if still running.
func (p *Pipeline) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !p.Halted(); i++ {
		p.Tick()
	}
	return !p.Halted()
}

// instAt returns the instruction at a code address.
func (p *Pipeline) instAt(pc int) (insts.Instruction, bool) {
	if pc < insts.CodeBase || pc%4 != 0 {
		return insts.Instruction{}, false
	}
	idx := (pc - insts.CodeBase) / 4
	if idx >= len(p.code) {
		return insts.Instruction{}, false
	}
	return p.code[idx], true
}

// fail records a runtime program error and stops the engine.
func (p *Pipeline) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Introspection accessors, used by the per-tick dump and by tests.

// GetFetchLatch returns the fetch output latch.
func (p *Pipeline) GetFetchLatch() FetchLatch { return p.fetchLatch }

// GetDecodeLatch returns the decode output latch.
func (p *Pipeline) GetDecodeLatch() DecodeLatch { return p.decodeLatch }

// IQOccupancy returns the number of allocated issue-queue entries.
func (p *Pipeline) IQOccupancy() int { return p.iq.Occupancy() }

// ROBSize returns the number of occupied reorder-buffer entries.
func (p *Pipeline) ROBSize() int { return p.rob.Size() }

// LSQSize returns the number of occupied load/store-queue entries.
func (p *Pipeline) LSQSize() int { return p.lsq.Size() }

// BQSize returns the number of occupied branch-queue entries.
func (p *Pipeline) BQSize() int { return p.bq.Size() }

// FreePhysRegs returns the free-list length.
func (p *Pipeline) FreePhysRegs() int { return p.rename.FreeCount() }

// AllocatedPhysRegs returns the number of allocated physical registers.
func (p *Pipeline) AllocatedPhysRegs() int { return p.rename.AllocatedCount() }

// NumPhysRegs returns the configured physical register count.
func (p *Pipeline) NumPhysRegs() int { return p.rename.NumPhys() }

// FreeCCRegs returns the condition-code free-list length.
func (p *Pipeline) FreeCCRegs() int { return p.cc.FreeCount() }

// AllocatedCCRegs returns the number of allocated condition-code slots.
func (p *Pipeline) AllocatedCCRegs() int { return p.cc.AllocatedCount() }

// NumCCRegs returns the configured condition-code slot count.
func (p *Pipeline) NumCCRegs() int { return len(p.cc.regs) }

// CurrentMapping returns the physical register mapped to an architectural
// register, or -1.
func (p *Pipeline) CurrentMapping(arch int) int { return p.rename.CurrentMapping(arch) }
