package writer_test

import (
	"bytes"

	"github.com/hoveland/labops/writer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PausableWriter", func() {
	var out *bytes.Buffer
	var pausable *writer.PausableWriter

	BeforeEach(func() {
		out = bytes.NewBuffer(nil)
		pausable = writer.NewPausableWriter(out)
	})

	It("writes straight through while not paused", func() {
		n, err := pausable.Write([]byte("hello"))

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(out.String()).To(Equal("hello"))
	})

	It("holds writes back while paused and flushes them on resume", func() {
		pausable.Pause()

		_, err := pausable.Write([]byte("held "))
		Expect(err).NotTo(HaveOccurred())
		_, err = pausable.Write([]byte("back"))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(BeEmpty())

		_, err = pausable.Resume()
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("held back"))
	})

	It("writes through again after a resume", func() {
		pausable.Pause()
		_, err := pausable.Resume()
		Expect(err).NotTo(HaveOccurred())

		_, err = pausable.Write([]byte("onwards"))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("onwards"))
	})

	It("does not replay an earlier pause's output twice", func() {
		pausable.Pause()
		_, err := pausable.Write([]byte("once"))
		Expect(err).NotTo(HaveOccurred())
		_, err = pausable.Resume()
		Expect(err).NotTo(HaveOccurred())

		pausable.Pause()
		_, err = pausable.Resume()
		Expect(err).NotTo(HaveOccurred())

		Expect(out.String()).To(Equal("once"))
	})
})
