// Package emu provides architectural state and functional APEX emulation.
package emu

import "github.com/sarchlab/apexsim/insts"

// RegFile represents the APEX architectural register file.
// It contains the general-purpose registers R0..R15 and the condition flags.
type RegFile struct {
	// R holds the general-purpose registers.
	R [insts.NumArchRegs]int32

	// Flags holds the condition codes.
	Flags Flags
}

// Flags represents the APEX condition codes.
type Flags struct {
	// Z is the zero flag.
	Z bool
	// P is the positive flag.
	P bool
	// N is the negative flag.
	N bool
}

// FlagsFor computes the condition codes produced by an ALU result.
func FlagsFor(result int32) Flags {
	return Flags{
		Z: result == 0,
		P: result > 0,
		N: result < 0,
	}
}

// FlagsForCompare computes the condition codes produced by CMP/CML.
func FlagsForCompare(a, b int32) Flags {
	return Flags{
		Z: a == b,
		P: a > b,
		N: a < b,
	}
}

// ReadReg reads a register value. Out-of-range registers read as 0.
func (r *RegFile) ReadReg(reg int) int32 {
	if reg < 0 || reg >= insts.NumArchRegs {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Out-of-range writes are ignored.
func (r *RegFile) WriteReg(reg int, value int32) {
	if reg < 0 || reg >= insts.NumArchRegs {
		return
	}
	r.R[reg] = value
}

// BranchTaken evaluates a conditional branch opcode against the flags.
func (f Flags) BranchTaken(op insts.Op) bool {
	switch op {
	case insts.OpBZ:
		return f.Z
	case insts.OpBNZ:
		return !f.Z
	case insts.OpBP:
		return f.P
	case insts.OpBNP:
		return !f.P
	case insts.OpBN:
		return f.N
	case insts.OpBNN:
		return !f.N
	}
	return false
}
