// Package insts provides APEX instruction definitions and assembly parsing.
//
// This package implements the APEX ISA as structured instruction
// representations. It supports:
//   - Register-register arithmetic/logic: ADD, SUB, MUL, DIV, AND, OR, XOR
//   - Immediate arithmetic: ADDL, SUBL, MOVC
//   - Compares: CMP (register), CML (literal)
//   - Memory: LOAD, STORE and the post-increment forms LOADP, STOREP
//   - Branches: BZ, BNZ, BP, BNP, BN, BNN, JUMP, JALR
//   - Control: NOP, HALT
//
// Usage:
//
//	inst, err := insts.Parse("ADD R3,R1,R2")
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Rs2: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
package insts

// NumArchRegs is the number of architectural general-purpose registers.
const NumArchRegs = 16

// CodeBase is the address of the first instruction. Each instruction
// occupies 4 address units.
const CodeBase = 4000

// Op represents an APEX opcode.
type Op uint8

// APEX opcodes.
const (
	OpInvalid Op = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpAND
	OpOR
	OpXOR
	OpADDL
	OpSUBL
	OpCMP
	OpCML
	OpLOAD
	OpLOADP
	OpSTORE
	OpSTOREP
	OpMOVC
	OpBZ
	OpBNZ
	OpBP
	OpBNP
	OpBN
	OpBNN
	OpJUMP
	OpJALR
	OpNOP
	OpHALT
)

var opNames = map[Op]string{
	OpInvalid: "INVALID",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpMUL:     "MUL",
	OpDIV:     "DIV",
	OpAND:     "AND",
	OpOR:      "OR",
	OpXOR:     "XOR",
	OpADDL:    "ADDL",
	OpSUBL:    "SUBL",
	OpCMP:     "CMP",
	OpCML:     "CML",
	OpLOAD:    "LOAD",
	OpLOADP:   "LOADP",
	OpSTORE:   "STORE",
	OpSTOREP:  "STOREP",
	OpMOVC:    "MOVC",
	OpBZ:      "BZ",
	OpBNZ:     "BNZ",
	OpBP:      "BP",
	OpBNP:     "BNP",
	OpBN:      "BN",
	OpBNN:     "BNN",
	OpJUMP:    "JUMP",
	OpJALR:    "JALR",
	OpNOP:     "NOP",
	OpHALT:    "HALT",
}

// String returns the assembly mnemonic for the opcode.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "INVALID"
}

// FUKind identifies which functional unit executes an opcode.
type FUKind uint8

// Functional units.
const (
	FUInt FUKind = iota
	FUMul
	FUAddr
	FUBranch
	FUNone // NOP, HALT: retire without execution
)

// Instruction is a decoded APEX instruction.
// Operand presence is indicated by the Has* flags; absent operand fields
// hold zero and must not be read.
type Instruction struct {
	Op  Op
	Rd  int
	Rs1 int
	Rs2 int
	Imm int

	HasRd  bool
	HasRs1 bool
	HasRs2 bool
	HasImm bool
}

// Traits describes the operand shape and routing of an opcode.
type Traits struct {
	// Operand slots the opcode uses.
	UsesRd  bool
	UsesRs1 bool
	UsesRs2 bool
	UsesImm bool

	// FU is the functional unit the opcode issues to.
	FU FUKind

	// WritesFlags is true for opcodes that produce condition codes.
	WritesFlags bool

	// ReadsFlags is true for conditional branches.
	ReadsFlags bool

	// IsLoad / IsStore mark memory operations (includes the post-increment
	// forms).
	IsLoad  bool
	IsStore bool

	// PostIncrement marks LOADP/STOREP, which write the base register a
	// second destination (base + 4).
	PostIncrement bool

	// IsBranch covers conditional branches and jumps.
	IsBranch bool

	// Predicted is true for the opcodes that consult the BTB at fetch.
	Predicted bool
}

var traitsTable = map[Op]Traits{
	OpADD:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpSUB:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpMUL:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUMul, WritesFlags: true},
	OpDIV:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpAND:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpOR:   {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpXOR:  {UsesRd: true, UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpADDL: {UsesRd: true, UsesRs1: true, UsesImm: true, FU: FUInt, WritesFlags: true},
	OpSUBL: {UsesRd: true, UsesRs1: true, UsesImm: true, FU: FUInt, WritesFlags: true},
	OpCMP:  {UsesRs1: true, UsesRs2: true, FU: FUInt, WritesFlags: true},
	OpCML:  {UsesRs1: true, UsesImm: true, FU: FUInt, WritesFlags: true},
	OpMOVC: {UsesRd: true, UsesImm: true, FU: FUInt, WritesFlags: true},

	OpLOAD:   {UsesRd: true, UsesRs1: true, UsesImm: true, FU: FUAddr, IsLoad: true},
	OpLOADP:  {UsesRd: true, UsesRs1: true, UsesImm: true, FU: FUAddr, IsLoad: true, PostIncrement: true},
	OpSTORE:  {UsesRs1: true, UsesRs2: true, UsesImm: true, FU: FUAddr, IsStore: true},
	OpSTOREP: {UsesRs1: true, UsesRs2: true, UsesImm: true, FU: FUAddr, IsStore: true, PostIncrement: true},

	OpBZ:  {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true, Predicted: true},
	OpBNZ: {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true, Predicted: true},
	OpBP:  {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true, Predicted: true},
	OpBNP: {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true, Predicted: true},
	OpBN:  {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true},
	OpBNN: {UsesImm: true, FU: FUBranch, ReadsFlags: true, IsBranch: true},

	OpJUMP: {UsesRs1: true, UsesImm: true, FU: FUBranch, IsBranch: true},
	OpJALR: {UsesRd: true, UsesRs1: true, UsesImm: true, FU: FUBranch, IsBranch: true},

	OpNOP:  {FU: FUNone},
	OpHALT: {FU: FUNone},
}

// OpTraits returns the operand shape and routing for the opcode.
func OpTraits(op Op) Traits {
	return traitsTable[op]
}

// Traits returns the operand shape and routing for the instruction's opcode.
func (i *Instruction) Traits() Traits {
	return OpTraits(i.Op)
}

// IsMemory reports whether the instruction is a load or store.
func (i *Instruction) IsMemory() bool {
	t := i.Traits()
	return t.IsLoad || t.IsStore
}

// BaseReg returns the architectural register that holds the memory base
// address: rs1 for LOAD/LOADP, rs2 for STORE/STOREP. The post-increment
// forms add 4 to this register.
func (i *Instruction) BaseReg() int {
	if i.Traits().IsStore {
		return i.Rs2
	}
	return i.Rs1
}

// InitiallyTaken reports the initial BTB prediction polarity for a
// conditional branch: BNZ and BP start weakly taken, BZ and BNP start
// not taken.
func InitiallyTaken(op Op) bool {
	return op == OpBNZ || op == OpBP
}
