// Package core provides the cycle-accurate APEX core model.
// It wraps the out-of-order pipeline to provide a high-level interface.
package core

import (
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

// Core represents a cycle-accurate APEX core.
// It wraps the out-of-order pipeline and provides a simple interface for
// simulation.
type Core struct {
	// Pipeline is the underlying out-of-order pipeline.
	Pipeline *pipeline.Pipeline

	// Shared resources.
	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore creates a Core with fresh architectural state.
func NewCore(cfg *config.Config) *Core {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	regFile := &emu.RegFile{}
	memory := emu.NewMemorySized(cfg.DataMemorySize)
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, pipeline.WithConfig(cfg)),
		regFile:  regFile,
		memory:   memory,
	}
}

// LoadProgram sets the code memory and resets the core.
func (c *Core) LoadProgram(code []insts.Instruction) {
	c.Pipeline.LoadProgram(code)
}

// RegFile returns the architectural register file.
func (c *Core) RegFile() *emu.RegFile { return c.regFile }

// Memory returns the data memory.
func (c *Core) Memory() *emu.Memory { return c.memory }

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted returns true if the core has halted.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Err returns the runtime program error, if any.
func (c *Core) Err() error {
	return c.Pipeline.Err()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Stats {
	return c.Pipeline.Stats()
}

// Run executes the core until it halts. Returns the runtime program error,
// if any.
func (c *Core) Run() error {
	return c.Pipeline.Run()
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Reset clears all core state, keeping the loaded program.
func (c *Core) Reset() {
	*c.regFile = emu.RegFile{}
	c.memory.Clear()
	c.Pipeline.Reset()
}
