package command

import (
	"os"

	"github.com/hoveland/labops/orchestrator"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/urfave/cli"
)

var _ = Describe("processError", func() {
	It("maps no errors to a zero exit", func() {
		err := processError(nil)

		exitErr, ok := err.(*cli.ExitError)
		Expect(ok).To(BeTrue())
		Expect(exitErr.ExitCode()).To(Equal(0))
		Expect(exitErr.Error()).To(BeEmpty())
	})

	It("keeps warnings-only runs at exit zero but reports them", func() {
		warnings := orchestrator.NewError(orchestrator.NewToolWarning("robocopy warnings"))

		err := processError(warnings)

		exitErr, ok := err.(*cli.ExitError)
		Expect(ok).To(BeTrue())
		Expect(exitErr.ExitCode()).To(Equal(0))
		Expect(exitErr.Error()).To(ContainSubstring("robocopy warnings"))
	})

	Context("with a fatal error", func() {
		var originalWd string

		BeforeEach(func() {
			var err error
			originalWd, err = os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
		})

		AfterEach(func() {
			Expect(os.Chdir(originalWd)).To(Succeed())
		})

		It("exits 1 and leaves a stack trace file behind", func() {
			fatal := orchestrator.NewError(orchestrator.NewToolError("7-Zip failed"))

			err := processError(fatal)

			exitErr, ok := err.(*cli.ExitError)
			Expect(ok).To(BeTrue())
			Expect(exitErr.ExitCode()).To(Equal(1))
			Expect(exitErr.Error()).To(ContainSubstring("7-Zip failed"))

			wd, err2 := os.Getwd()
			Expect(err2).NotTo(HaveOccurred())
			entries, err2 := os.ReadDir(wd)
			Expect(err2).NotTo(HaveOccurred())
			Expect(entries).NotTo(BeEmpty())
			Expect(entries[0].Name()).To(MatchRegexp(`labops-.*\.err\.log`))
		})
	})
})
