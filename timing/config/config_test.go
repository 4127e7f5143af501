package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/timing/config"
)

var _ = Describe("Config", func() {
	It("provides the reference-design defaults", func() {
		cfg := config.DefaultConfig()
		Expect(cfg.NumPhysRegs).To(Equal(24))
		Expect(cfg.NumCCRegs).To(Equal(16))
		Expect(cfg.IQSize).To(Equal(24))
		Expect(cfg.ROBSize).To(Equal(32))
		Expect(cfg.LSQSize).To(Equal(16))
		Expect(cfg.BQSize).To(Equal(16))
		Expect(cfg.BTBSlots).To(Equal(4))
		Expect(cfg.DataMemorySize).To(Equal(4096))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("overrides only the fields present in the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "cfg.json")
		Expect(os.WriteFile(path, []byte(`{"rob_size": 64, "iq_size": 48}`), 0o644)).To(Succeed())

		cfg, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ROBSize).To(Equal(64))
		Expect(cfg.IQSize).To(Equal(48))
		Expect(cfg.NumPhysRegs).To(Equal(24))
	})

	It("rejects non-positive capacities", func() {
		path := filepath.Join(GinkgoT().TempDir(), "cfg.json")
		Expect(os.WriteFile(path, []byte(`{"rob_size": 0}`), 0o644)).To(Succeed())

		_, err := config.LoadConfig(path)
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed JSON", func() {
		path := filepath.Join(GinkgoT().TempDir(), "cfg.json")
		Expect(os.WriteFile(path, []byte(`{`), 0o644)).To(Succeed())

		_, err := config.LoadConfig(path)
		Expect(err).To(HaveOccurred())
	})

	It("fails on a missing file", func() {
		_, err := config.LoadConfig(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
	})
})
