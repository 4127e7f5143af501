package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
)

func writeProgram(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("loads a program and assigns code addresses", func() {
		path := writeProgram(dir, "prog.asm", "MOVC R1,#3\nMOVC R2,#4\nADD R3,R1,R2\nHALT\n")

		prog, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Instructions).To(HaveLen(4))
		Expect(prog.Instructions[0].Op).To(Equal(insts.OpMOVC))
		Expect(prog.Instructions[3].Op).To(Equal(insts.OpHALT))
		Expect(prog.PCOf(0)).To(Equal(4000))
		Expect(prog.PCOf(3)).To(Equal(4012))
	})

	It("skips blank lines and comments", func() {
		path := writeProgram(dir, "prog.asm",
			"; setup\nMOVC R1,#3\n\nHALT ; done\n")

		prog, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Instructions).To(HaveLen(2))
	})

	It("reports the file and line of a parse error", func() {
		path := writeProgram(dir, "bad.asm", "MOVC R1,#3\nFROB R1\n")

		_, err := loader.Load(path)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("bad.asm:2"))
	})

	It("fails on a missing file", func() {
		_, err := loader.Load(filepath.Join(dir, "missing.asm"))
		Expect(err).To(HaveOccurred())
	})

	It("fails on an empty program", func() {
		path := writeProgram(dir, "empty.asm", "; nothing\n")
		_, err := loader.Load(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Assemble", func() {
	It("builds a program from an in-memory listing", func() {
		prog, err := loader.Assemble([]string{"MOVC R1,#1", "HALT"})
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Instructions).To(HaveLen(2))
	})

	It("reports the failing line", func() {
		_, err := loader.Assemble([]string{"MOVC R1,#1", "ADD R1"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})
})
