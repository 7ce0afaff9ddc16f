package runner_test

import (
	. "github.com/hoveland/labops/runner"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ClassifyRobocopyExit", func() {
	It("treats 0 (nothing to copy) as success", func() {
		Expect(ClassifyRobocopyExit(0)).To(Equal(Success))
	})

	It("treats 1 (files copied) as success", func() {
		Expect(ClassifyRobocopyExit(1)).To(Equal(Success))
	})

	It("treats 2 and 3 as success with warnings", func() {
		Expect(ClassifyRobocopyExit(2)).To(Equal(SuccessWithWarnings))
		Expect(ClassifyRobocopyExit(3)).To(Equal(SuccessWithWarnings))
	})

	It("treats 4 to 7 as warnings", func() {
		for code := 4; code <= 7; code++ {
			Expect(ClassifyRobocopyExit(code)).To(Equal(SuccessWithWarnings), "exit code %d", code)
		}
	})

	It("treats 8 and above as failure", func() {
		Expect(ClassifyRobocopyExit(8)).To(Equal(Failure))
		Expect(ClassifyRobocopyExit(16)).To(Equal(Failure))
	})

	It("treats negative codes as failure", func() {
		Expect(ClassifyRobocopyExit(-1)).To(Equal(Failure))
	})
})

var _ = Describe("ClassifyExit", func() {
	It("only accepts zero", func() {
		Expect(ClassifyExit(0)).To(Equal(Success))
		Expect(ClassifyExit(1)).To(Equal(Failure))
		Expect(ClassifyExit(255)).To(Equal(Failure))
	})
})

var _ = Describe("Outcome", func() {
	It("prints itself", func() {
		Expect(Success.String()).To(Equal("success"))
		Expect(SuccessWithWarnings.String()).To(Equal("success-with-warnings"))
		Expect(Failure.String()).To(Equal("failure"))
	})
})
