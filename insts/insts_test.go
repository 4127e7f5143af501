package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/insts"
)

var _ = Describe("Parse", func() {
	It("parses a register-register instruction", func() {
		inst, err := insts.Parse("ADD R3,R1,R2")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpADD))
		Expect(inst.Rd).To(Equal(3))
		Expect(inst.Rs1).To(Equal(1))
		Expect(inst.Rs2).To(Equal(2))
		Expect(inst.HasImm).To(BeFalse())
	})

	It("parses an immediate instruction", func() {
		inst, err := insts.Parse("MOVC R1,#42")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpMOVC))
		Expect(inst.Rd).To(Equal(1))
		Expect(inst.Imm).To(Equal(42))
	})

	It("parses a negative immediate", func() {
		inst, err := insts.Parse("BNZ #-8")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Imm).To(Equal(-8))
		Expect(inst.HasRd).To(BeFalse())
	})

	It("accepts whitespace-separated operands", func() {
		inst, err := insts.Parse("STORE R1 R2 #0")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpSTORE))
		Expect(inst.Rs1).To(Equal(1))
		Expect(inst.Rs2).To(Equal(2))
	})

	It("is case-insensitive on mnemonics", func() {
		inst, err := insts.Parse("halt")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpHALT))
	})

	It("strips comments", func() {
		inst, err := insts.Parse("LOAD R3,R2,#0 ; read it back")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpLOAD))
	})

	It("returns nil for blank and comment-only lines", func() {
		inst, err := insts.Parse("   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst).To(BeNil())

		inst, err = insts.Parse("; just a comment")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst).To(BeNil())
	})

	It("rejects unknown mnemonics", func() {
		_, err := insts.Parse("FROB R1,R2")
		Expect(err).To(HaveOccurred())
	})

	It("rejects wrong operand counts", func() {
		_, err := insts.Parse("ADD R1,R2")
		Expect(err).To(HaveOccurred())
	})

	It("rejects out-of-range registers", func() {
		_, err := insts.Parse("MOVC R16,#1")
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed immediates", func() {
		_, err := insts.Parse("MOVC R1,42")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Traits", func() {
	It("routes opcodes to their functional units", func() {
		Expect(insts.OpTraits(insts.OpADD).FU).To(Equal(insts.FUInt))
		Expect(insts.OpTraits(insts.OpMUL).FU).To(Equal(insts.FUMul))
		Expect(insts.OpTraits(insts.OpLOAD).FU).To(Equal(insts.FUAddr))
		Expect(insts.OpTraits(insts.OpSTOREP).FU).To(Equal(insts.FUAddr))
		Expect(insts.OpTraits(insts.OpBNZ).FU).To(Equal(insts.FUBranch))
		Expect(insts.OpTraits(insts.OpJALR).FU).To(Equal(insts.FUBranch))
		Expect(insts.OpTraits(insts.OpNOP).FU).To(Equal(insts.FUNone))
		Expect(insts.OpTraits(insts.OpHALT).FU).To(Equal(insts.FUNone))
	})

	It("marks flag writers", func() {
		Expect(insts.OpTraits(insts.OpCMP).WritesFlags).To(BeTrue())
		Expect(insts.OpTraits(insts.OpMOVC).WritesFlags).To(BeTrue())
		Expect(insts.OpTraits(insts.OpLOAD).WritesFlags).To(BeFalse())
		Expect(insts.OpTraits(insts.OpBNZ).WritesFlags).To(BeFalse())
	})

	It("marks only the four predicted branch opcodes", func() {
		Expect(insts.OpTraits(insts.OpBZ).Predicted).To(BeTrue())
		Expect(insts.OpTraits(insts.OpBNZ).Predicted).To(BeTrue())
		Expect(insts.OpTraits(insts.OpBP).Predicted).To(BeTrue())
		Expect(insts.OpTraits(insts.OpBNP).Predicted).To(BeTrue())
		Expect(insts.OpTraits(insts.OpBN).Predicted).To(BeFalse())
		Expect(insts.OpTraits(insts.OpJUMP).Predicted).To(BeFalse())
	})

	It("identifies the memory base register", func() {
		load, err := insts.Parse("LOAD R3,R1,#0")
		Expect(err).NotTo(HaveOccurred())
		Expect(load.BaseReg()).To(Equal(1))

		store, err := insts.Parse("STORE R3,R1,#0")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.BaseReg()).To(Equal(1))
	})

	It("renders instructions back to assembly", func() {
		inst, err := insts.Parse("ADDL R2,R1,#5")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.String()).To(Equal("ADDL R2,R1,#5"))
	})
})
