package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
)

var _ = Describe("Environment", func() {
	var (
		flags       *pflag.FlagSet
		numStreams  int
		trainMisses int
	)

	BeforeEach(func() {
		flags = pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.IntVar(&numStreams, "num-streams", 4, "")
		flags.IntVar(&trainMisses, "train-misses", 4, "")
	})

	AfterEach(func() {
		os.Unsetenv("STREAMPF_NUM_STREAMS")
		os.Unsetenv("STREAMPF_TRAIN_MISSES")
	})

	It("should derive the variable name from the flag name", func() {
		Expect(envName("num-streams")).To(Equal("STREAMPF_NUM_STREAMS"))
		Expect(envName("log2-page-size")).To(Equal("STREAMPF_LOG2_PAGE_SIZE"))
	})

	It("should set flags from the environment", func() {
		os.Setenv("STREAMPF_NUM_STREAMS", "16")

		Expect(flags.Parse(nil)).To(Succeed())
		Expect(applyEnv(flags)).To(Succeed())

		Expect(numStreams).To(Equal(16))
		Expect(trainMisses).To(Equal(4))
	})

	It("should prefer the command line", func() {
		os.Setenv("STREAMPF_NUM_STREAMS", "16")

		Expect(flags.Parse([]string{"--num-streams", "8"})).To(Succeed())
		Expect(applyEnv(flags)).To(Succeed())

		Expect(numStreams).To(Equal(8))
	})

	It("should report malformed values", func() {
		os.Setenv("STREAMPF_TRAIN_MISSES", "many")

		Expect(flags.Parse(nil)).To(Succeed())
		err := applyEnv(flags)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("STREAMPF_TRAIN_MISSES"))
	})

	It("should ignore a missing env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")

		Expect(loadEnvFile(path)).To(Succeed())
	})

	It("should load the env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(path,
			[]byte("STREAMPF_TRAIN_MISSES=2\n"), 0o600)).To(Succeed())

		Expect(loadEnvFile(path)).To(Succeed())
		Expect(flags.Parse(nil)).To(Succeed())
		Expect(applyEnv(flags)).To(Succeed())

		Expect(trainMisses).To(Equal(2))
	})
})
