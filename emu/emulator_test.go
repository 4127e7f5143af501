package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
)

// run assembles a listing and executes it to completion.
func run(listing []string) *emu.Emulator {
	prog, err := loader.Assemble(listing)
	Expect(err).NotTo(HaveOccurred())

	e := emu.NewEmulator()
	e.LoadProgram(prog.Instructions)
	Expect(e.Run()).To(Succeed())
	return e
}

var _ = Describe("Emulator", func() {
	It("executes arithmetic", func() {
		e := run([]string{
			"MOVC R1,#3",
			"MOVC R2,#4",
			"ADD R3,R1,R2",
			"HALT",
		})
		Expect(e.RegFile().R[3]).To(Equal(int32(7)))
		Expect(e.InstructionCount()).To(Equal(uint64(4)))
	})

	It("sets flags from ALU results", func() {
		e := run([]string{
			"MOVC R1,#5",
			"SUBL R2,R1,#5",
			"HALT",
		})
		Expect(e.RegFile().Flags.Z).To(BeTrue())
		Expect(e.RegFile().Flags.P).To(BeFalse())
	})

	It("sets flags from MOVC", func() {
		e := run([]string{
			"MOVC R1,#0",
			"HALT",
		})
		Expect(e.RegFile().Flags.Z).To(BeTrue())
	})

	It("compares registers and literals", func() {
		e := run([]string{
			"MOVC R1,#3",
			"MOVC R2,#5",
			"CMP R1,R2",
			"HALT",
		})
		Expect(e.RegFile().Flags.N).To(BeTrue())

		e = run([]string{
			"MOVC R1,#9",
			"CML R1,#5",
			"HALT",
		})
		Expect(e.RegFile().Flags.P).To(BeTrue())
	})

	It("stores and loads", func() {
		e := run([]string{
			"MOVC R1,#42",
			"MOVC R2,#5",
			"STORE R1,R2,#0",
			"LOAD R3,R2,#0",
			"HALT",
		})
		Expect(e.RegFile().R[3]).To(Equal(int32(42)))
		v, err := e.Memory().Read(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(int32(42)))
	})

	It("post-increments LOADP and STOREP bases", func() {
		e := run([]string{
			"MOVC R1,#100",
			"MOVC R2,#7",
			"STOREP R2,R1,#0",
			"MOVC R3,#100",
			"LOADP R4,R3,#0",
			"HALT",
		})
		Expect(e.RegFile().R[1]).To(Equal(int32(104)))
		Expect(e.RegFile().R[3]).To(Equal(int32(104)))
		Expect(e.RegFile().R[4]).To(Equal(int32(7)))
	})

	It("lets the load result win when LOADP aliases base and destination", func() {
		e := run([]string{
			"MOVC R1,#9",
			"MOVC R2,#30",
			"STORE R1,R2,#0",
			"MOVC R3,#30",
			"LOADP R3,R3,#0",
			"HALT",
		})
		Expect(e.RegFile().R[3]).To(Equal(int32(9)))
	})

	It("branches on flags", func() {
		e := run([]string{
			"MOVC R1,#0",
			"MOVC R2,#3",
			"ADDL R1,R1,#1",
			"CMP R1,R2",
			"BNZ #-8",
			"HALT",
		})
		Expect(e.RegFile().R[1]).To(Equal(int32(3)))
		Expect(e.RegFile().Flags.Z).To(BeTrue())
		Expect(e.InstructionCount()).To(Equal(uint64(12)))
	})

	It("jumps and links", func() {
		e := run([]string{
			"MOVC R1,#4008",
			"JALR R2,R1,#4",
			"MOVC R3,#99",
			"HALT",
		})
		Expect(e.RegFile().R[2]).To(Equal(int32(4008)))
		Expect(e.RegFile().R[3]).To(Equal(int32(0)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
	})

	It("fails on divide by zero", func() {
		prog, err := loader.Assemble([]string{
			"MOVC R1,#1",
			"MOVC R2,#0",
			"DIV R3,R1,R2",
			"HALT",
		})
		Expect(err).NotTo(HaveOccurred())

		e := emu.NewEmulator()
		e.LoadProgram(prog.Instructions)
		Expect(e.Run()).To(MatchError(emu.ErrDivideByZero))
	})

	It("fails on an out-of-bounds access", func() {
		prog, err := loader.Assemble([]string{
			"MOVC R1,#1",
			"MOVC R2,#100000",
			"LOAD R3,R2,#0",
			"HALT",
		})
		Expect(err).NotTo(HaveOccurred())

		e := emu.NewEmulator()
		e.LoadProgram(prog.Instructions)
		Expect(e.Run()).To(HaveOccurred())
	})

	It("fails when the PC runs off code memory", func() {
		prog, err := loader.Assemble([]string{"MOVC R1,#1"})
		Expect(err).NotTo(HaveOccurred())

		e := emu.NewEmulator()
		e.LoadProgram(prog.Instructions)
		Expect(e.Run()).To(HaveOccurred())
	})
})

var _ = Describe("Flags", func() {
	It("evaluates every branch condition", func() {
		pos := emu.Flags{P: true}
		neg := emu.Flags{N: true}
		zero := emu.Flags{Z: true}

		Expect(zero.BranchTaken(insts.OpBZ)).To(BeTrue())
		Expect(pos.BranchTaken(insts.OpBZ)).To(BeFalse())
		Expect(pos.BranchTaken(insts.OpBNZ)).To(BeTrue())
		Expect(pos.BranchTaken(insts.OpBP)).To(BeTrue())
		Expect(neg.BranchTaken(insts.OpBP)).To(BeFalse())
		Expect(neg.BranchTaken(insts.OpBNP)).To(BeTrue())
		Expect(neg.BranchTaken(insts.OpBN)).To(BeTrue())
		Expect(pos.BranchTaken(insts.OpBNN)).To(BeTrue())
		Expect(neg.BranchTaken(insts.OpBNN)).To(BeFalse())
	})
})
