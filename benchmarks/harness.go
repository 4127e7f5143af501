// Package benchmarks provides APEX assembly kernels and the validation
// harness.
package benchmarks

import (
	"fmt"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/core"
)

// Result holds the outcome of running one kernel through both engines.
type Result struct {
	Name string

	// Pipeline statistics.
	Cycles  uint64
	Retired uint64
	CPI     float64

	// Reference interpreter instruction count.
	ReferenceInstructions uint64
}

// Run executes a kernel on both the in-order interpreter and the
// out-of-order pipeline and verifies that the architectural states match.
func Run(b Benchmark) (*Result, error) {
	prog, err := loader.Assemble(b.Listing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}

	ref := emu.NewEmulator()
	ref.LoadProgram(prog.Instructions)
	if err := ref.Run(); err != nil {
		return nil, fmt.Errorf("%s: reference: %w", b.Name, err)
	}

	c := core.NewCore(config.DefaultConfig())
	c.LoadProgram(prog.Instructions)
	maxCycles := b.MaxCycles
	if maxCycles == 0 {
		maxCycles = 100000
	}
	c.RunCycles(maxCycles)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%s: pipeline: %w", b.Name, err)
	}
	if !c.Halted() {
		return nil, fmt.Errorf("%s: pipeline did not halt within %d cycles", b.Name, maxCycles)
	}

	if err := compareState(ref, c); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}

	stats := c.Stats()
	return &Result{
		Name:                  b.Name,
		Cycles:                stats.Cycles,
		Retired:               stats.Retired,
		CPI:                   stats.CPI(),
		ReferenceInstructions: ref.InstructionCount(),
	}, nil
}

// compareState checks register, flag, and retired-count agreement between
// the reference interpreter and the pipeline.
func compareState(ref *emu.Emulator, c *core.Core) error {
	refRegs := ref.RegFile()
	pipeRegs := c.RegFile()
	for i := range refRegs.R {
		if refRegs.R[i] != pipeRegs.R[i] {
			return fmt.Errorf("R%d: reference %d, pipeline %d",
				i, refRegs.R[i], pipeRegs.R[i])
		}
	}
	if refRegs.Flags != pipeRegs.Flags {
		return fmt.Errorf("flags: reference %+v, pipeline %+v",
			refRegs.Flags, pipeRegs.Flags)
	}
	if ref.InstructionCount() != c.Stats().Retired {
		return fmt.Errorf("retired count: reference %d, pipeline %d",
			ref.InstructionCount(), c.Stats().Retired)
	}
	for addr := 0; addr < ref.Memory().Size() && addr < c.Memory().Size(); addr++ {
		rv, _ := ref.Memory().Read(addr)
		pv, _ := c.Memory().Read(addr)
		if rv != pv {
			return fmt.Errorf("memory[%d]: reference %d, pipeline %d", addr, rv, pv)
		}
	}
	return nil
}
