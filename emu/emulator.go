// Package emu provides architectural state and functional APEX emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// Emulator is the in-order reference interpreter. It executes one
// instruction per Step with the same ISA semantics as the timing model and
// is the ground truth for architectural-equivalence validation.
type Emulator struct {
	regFile *RegFile
	memory  *Memory

	code []insts.Instruction
	pc   int

	instCount uint64
	halted    bool
	err       error
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory sets the data memory used by the emulator.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// NewEmulator creates an emulator with fresh architectural state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		pc:      insts.CodeBase,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.memory == nil {
		e.memory = NewMemory()
	}
	return e
}

// LoadProgram sets the code memory and resets the PC to the entry point.
func (e *Emulator) LoadProgram(code []insts.Instruction) {
	e.code = code
	e.pc = insts.CodeBase
}

// RegFile returns the architectural register file.
func (e *Emulator) RegFile() *RegFile { return e.regFile }

// Memory returns the data memory.
func (e *Emulator) Memory() *Memory { return e.memory }

// PC returns the current program counter.
func (e *Emulator) PC() int { return e.pc }

// Halted reports whether HALT has executed.
func (e *Emulator) Halted() bool { return e.halted }

// Err returns the runtime program error, if any.
func (e *Emulator) Err() error { return e.err }

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 { return e.instCount }

// StepResult reports the outcome of a single Step.
type StepResult struct {
	// Halted is true once HALT executes.
	Halted bool
	// Err is set on a runtime program error (bad PC, out-of-bounds memory
	// access, divide by zero). The emulator stops on the first error.
	Err error
}

// Step executes the instruction at the current PC.
func (e *Emulator) Step() StepResult {
	if e.halted || e.err != nil {
		return StepResult{Halted: e.halted, Err: e.err}
	}

	idx := (e.pc - insts.CodeBase) / 4
	if e.pc < insts.CodeBase || e.pc%4 != 0 || idx >= len(e.code) {
		e.err = fmt.Errorf("pc %d outside code memory", e.pc)
		return StepResult{Err: e.err}
	}

	inst := &e.code[idx]
	nextPC := e.pc + 4

	switch inst.Op {
	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpDIV,
		insts.OpAND, insts.OpOR, insts.OpXOR:
		a := e.regFile.ReadReg(inst.Rs1)
		b := e.regFile.ReadReg(inst.Rs2)
		result, err := ALUOp(inst.Op, a, b)
		if err != nil {
			e.err = err
			return StepResult{Err: err}
		}
		e.regFile.WriteReg(inst.Rd, result)
		e.regFile.Flags = FlagsFor(result)

	case insts.OpADDL:
		result := e.regFile.ReadReg(inst.Rs1) + int32(inst.Imm)
		e.regFile.WriteReg(inst.Rd, result)
		e.regFile.Flags = FlagsFor(result)

	case insts.OpSUBL:
		result := e.regFile.ReadReg(inst.Rs1) - int32(inst.Imm)
		e.regFile.WriteReg(inst.Rd, result)
		e.regFile.Flags = FlagsFor(result)

	case insts.OpMOVC:
		result := int32(inst.Imm)
		e.regFile.WriteReg(inst.Rd, result)
		e.regFile.Flags = FlagsFor(result)

	case insts.OpCMP:
		e.regFile.Flags = FlagsForCompare(
			e.regFile.ReadReg(inst.Rs1), e.regFile.ReadReg(inst.Rs2))

	case insts.OpCML:
		e.regFile.Flags = FlagsForCompare(
			e.regFile.ReadReg(inst.Rs1), int32(inst.Imm))

	case insts.OpLOAD, insts.OpLOADP:
		addr := int(e.regFile.ReadReg(inst.Rs1)) + inst.Imm
		value, err := e.memory.Read(addr)
		if err != nil {
			e.err = err
			return StepResult{Err: err}
		}
		if inst.Op == insts.OpLOADP {
			e.regFile.WriteReg(inst.Rs1, e.regFile.ReadReg(inst.Rs1)+4)
		}
		e.regFile.WriteReg(inst.Rd, value)

	case insts.OpSTORE, insts.OpSTOREP:
		addr := int(e.regFile.ReadReg(inst.Rs2)) + inst.Imm
		if err := e.memory.Write(addr, e.regFile.ReadReg(inst.Rs1)); err != nil {
			e.err = err
			return StepResult{Err: err}
		}
		if inst.Op == insts.OpSTOREP {
			e.regFile.WriteReg(inst.Rs2, e.regFile.ReadReg(inst.Rs2)+4)
		}

	case insts.OpBZ, insts.OpBNZ, insts.OpBP, insts.OpBNP, insts.OpBN, insts.OpBNN:
		if e.regFile.Flags.BranchTaken(inst.Op) {
			nextPC = e.pc + inst.Imm
		}

	case insts.OpJUMP:
		nextPC = int(e.regFile.ReadReg(inst.Rs1)) + inst.Imm

	case insts.OpJALR:
		e.regFile.WriteReg(inst.Rd, int32(e.pc+4))
		nextPC = int(e.regFile.ReadReg(inst.Rs1)) + inst.Imm

	case insts.OpNOP:

	case insts.OpHALT:
		e.halted = true
	}

	e.instCount++
	e.pc = nextPC
	return StepResult{Halted: e.halted}
}

// Run executes instructions until HALT or a runtime error.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}
