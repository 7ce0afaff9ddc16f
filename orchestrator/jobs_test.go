package orchestrator_test

import (
	"fmt"
	"path/filepath"

	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/runner"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

type fakeMirrorer struct {
	calls   *[]string
	outcome runner.Outcome
	err     error
}

func (f fakeMirrorer) Mirror(source, destination string) (runner.Outcome, error) {
	*f.calls = append(*f.calls, fmt.Sprintf("mirror %s -> %s", source, destination))
	return f.outcome, f.err
}

type fakeArchiver struct {
	calls *[]string
	err   error
}

func (f fakeArchiver) Archive(source, archivePath string) (runner.Outcome, error) {
	*f.calls = append(*f.calls, fmt.Sprintf("archive %s -> %s", source, archivePath))
	if f.err != nil {
		return runner.Failure, f.err
	}
	return runner.Success, nil
}

type fakeParity struct {
	calls *[]string
	err   error
}

func (f fakeParity) Create(file string) (runner.Outcome, error) {
	*f.calls = append(*f.calls, "parity "+file)
	if f.err != nil {
		return runner.Failure, f.err
	}
	return runner.Success, nil
}

type fakeRotator struct {
	calls *[]string
	errs  []error
}

func (f fakeRotator) Rotate(cacheDir string) []error {
	*f.calls = append(*f.calls, "rotate "+cacheDir)
	return f.errs
}

var _ = Describe("backup jobs", func() {
	var calls []string
	var logger boshlog.Logger
	var backup *orchestrator.TargetBackup

	target := config.Target{Name: "photos", Source: "C:/Users/lab/Pictures", Destination: "backups/photos"}

	BeforeEach(func() {
		calls = nil
		logger = boshlog.NewWriterLogger(boshlog.LevelDebug, GinkgoWriter)
		backup = orchestrator.NewTargetBackup(target)
	})

	Describe("LocalDriveJob", func() {
		It("mirrors the source onto the drive", func() {
			job := orchestrator.NewLocalDriveJob(backup, "E:/", fakeMirrorer{calls: &calls}, logger)

			Expect(job.Execute()).To(Succeed())
			Expect(calls).To(Equal([]string{
				"mirror C:/Users/lab/Pictures -> " + filepath.Join("E:/", "backups/photos"),
			}))
			Expect(backup.LocalFailed()).To(BeFalse())
		})

		It("reports warnings without failing the run", func() {
			mirrorer := fakeMirrorer{calls: &calls, outcome: runner.SuccessWithWarnings}
			job := orchestrator.NewLocalDriveJob(backup, "E:/", mirrorer, logger)

			err := job.Execute()

			Expect(err).To(BeAssignableToTypeOf(orchestrator.ToolWarning{}))
			Expect(backup.LocalFailed()).To(BeFalse())
		})

		It("marks the target failed when the copy fails", func() {
			mirrorer := fakeMirrorer{calls: &calls, outcome: runner.Failure, err: errors.New("exit code 16")}
			job := orchestrator.NewLocalDriveJob(backup, "E:/", mirrorer, logger)

			err := job.Execute()

			Expect(err).To(BeAssignableToTypeOf(orchestrator.ToolError{}))
			Expect(backup.LocalFailed()).To(BeTrue())
		})
	})

	Describe("SmbShareJob", func() {
		It("replicates the source onto the share", func() {
			job := orchestrator.NewSmbShareJob(backup, "//nas/backups", fakeMirrorer{calls: &calls}, logger)

			Expect(job.Execute()).To(Succeed())
			Expect(calls).To(HaveLen(1))
			Expect(calls[0]).To(HavePrefix("mirror C:/Users/lab/Pictures -> "))
		})

		It("stays home when a local copy of the target failed", func() {
			failing := orchestrator.NewLocalDriveJob(backup, "E:/",
				fakeMirrorer{calls: &calls, err: errors.New("exit code 16")}, logger)
			Expect(failing.Execute()).To(HaveOccurred())
			calls = nil

			job := orchestrator.NewSmbShareJob(backup, "//nas/backups", fakeMirrorer{calls: &calls}, logger)

			Expect(job.Execute()).To(Succeed())
			Expect(calls).To(BeEmpty())
		})
	})

	Describe("ArchiveJob", func() {
		job := func(archiver fakeArchiver, parity fakeParity, rotator fakeRotator) orchestrator.ArchiveJob {
			return orchestrator.NewArchiveJob(backup, "E:/backups/photos", archiver, parity, rotator, logger)
		}

		It("archives, writes parity and rotates the cache", func() {
			err := job(fakeArchiver{calls: &calls}, fakeParity{calls: &calls}, fakeRotator{calls: &calls}).Execute()

			Expect(err).NotTo(HaveOccurred())
			cache := filepath.Join("E:/backups/photos", "cache")
			Expect(calls).To(Equal([]string{
				"archive C:/Users/lab/Pictures -> " + filepath.Join(cache, "photos.7z"),
				"parity " + filepath.Join(cache, "photos.7z"),
				"rotate " + cache,
			}))
		})

		It("stops before parity when archiving fails", func() {
			archiver := fakeArchiver{calls: &calls, err: errors.New("exit code 2")}

			err := job(archiver, fakeParity{calls: &calls}, fakeRotator{calls: &calls}).Execute()

			Expect(err).To(BeAssignableToTypeOf(orchestrator.ToolError{}))
			Expect(calls).To(HaveLen(1))
		})

		It("fails when parity creation fails", func() {
			parity := fakeParity{calls: &calls, err: errors.New("exit code 1")}

			err := job(fakeArchiver{calls: &calls}, parity, fakeRotator{calls: &calls}).Execute()

			Expect(err).To(BeAssignableToTypeOf(orchestrator.ToolError{}))
		})

		It("surfaces rotation failures as an aggregate", func() {
			rotator := fakeRotator{calls: &calls, errs: []error{errors.New("rename failed")}}

			err := job(fakeArchiver{calls: &calls}, fakeParity{calls: &calls}, rotator).Execute()

			Expect(err).To(MatchError(ContainSubstring("rename failed")))
		})
	})
})
