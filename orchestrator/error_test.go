package orchestrator_test

import (
	"github.com/hoveland/labops/orchestrator"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Error", func() {
	It("prints a counted list of its members", func() {
		err := orchestrator.NewError(
			errors.New("disk full"),
			errors.New("remote hung up"),
		)

		Expect(err.Error()).To(ContainSubstring("2 errors occurred:"))
		Expect(err.Error()).To(ContainSubstring("error 1:"))
		Expect(err.Error()).To(ContainSubstring("disk full"))
		Expect(err.Error()).To(ContainSubstring("error 2:"))
		Expect(err.Error()).To(ContainSubstring("remote hung up"))
	})

	It("uses the singular for one member", func() {
		err := orchestrator.NewError(errors.New("disk full"))

		Expect(err.Error()).To(ContainSubstring("1 error occurred:"))
	})

	Describe("IsWarningsOnly", func() {
		It("is true when every member is a warning", func() {
			err := orchestrator.NewError(
				orchestrator.NewToolWarning("robocopy copied extra files"),
				orchestrator.NewToolWarning("robocopy found mismatches"),
			)

			Expect(err.IsWarningsOnly()).To(BeTrue())
			Expect(err.IsFatal()).To(BeFalse())
		})

		It("is false once any member is a real failure", func() {
			err := orchestrator.NewError(
				orchestrator.NewToolWarning("robocopy copied extra files"),
				orchestrator.NewToolError("7-Zip failed"),
			)

			Expect(err.IsWarningsOnly()).To(BeFalse())
			Expect(err.IsFatal()).To(BeTrue())
		})

		It("is false for an empty aggregate", func() {
			Expect(orchestrator.Error{}.IsWarningsOnly()).To(BeFalse())
		})
	})

	Describe("ContainsCleanup", func() {
		It("spots cleanup failures", func() {
			err := orchestrator.NewError(orchestrator.NewCleanupError("temp dir left behind"))

			Expect(err.ContainsCleanup()).To(BeTrue())
		})
	})

	Describe("ConvertErrors", func() {
		It("returns nil for an empty slice", func() {
			Expect(orchestrator.ConvertErrors(nil)).To(BeNil())
		})

		It("wraps a non-empty slice", func() {
			err := orchestrator.ConvertErrors([]error{errors.New("boom")})

			Expect(err).To(MatchError(ContainSubstring("boom")))
		})
	})

	Describe("ProcessError", func() {
		It("maps no error to exit code 0", func() {
			exitCode, message, _ := orchestrator.ProcessError(nil)

			Expect(exitCode).To(Equal(0))
			Expect(message).To(BeEmpty())
		})

		It("maps warnings-only to exit code 0 with a message", func() {
			err := orchestrator.NewError(orchestrator.NewToolWarning("robocopy warnings"))

			exitCode, message, _ := orchestrator.ProcessError(err)

			Expect(exitCode).To(Equal(0))
			Expect(message).To(ContainSubstring("robocopy warnings"))
		})

		It("maps anything fatal to exit code 1, never the tool's own code", func() {
			err := orchestrator.NewError(orchestrator.NewToolError("robocopy failed with exit code 16"))

			exitCode, message, stackTrace := orchestrator.ProcessError(err)

			Expect(exitCode).To(Equal(1))
			Expect(message).To(ContainSubstring("robocopy failed"))
			Expect(stackTrace).NotTo(BeEmpty())
		})
	})
})
