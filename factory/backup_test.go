package factory_test

import (
	"path/filepath"

	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/factory"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildBackupJobs", func() {
	var logger boshlog.Logger

	cfg := func() config.Config {
		return config.Config{
			Targets: []config.Target{
				{Name: "photos", Source: "C:/Users/lab/Pictures", Destination: "backups/photos"},
				{Name: "docs", Source: "C:/Users/lab/Documents", Destination: "backups/docs"},
			},
			Destinations: config.Destinations{
				LocalDrives:  []string{"E:/", "F:/"},
				SmbShares:    []string{"//nas/backups"},
				MirrorClones: []config.MirrorClone{{Root: "E:/mirrors"}},
				GitBundles:   []config.GitBundle{{Root: "E:/mirrors", Destination: "F:/bundles"}},
			},
			Strategy: config.Strategy{
				NumberOfDailyBackups:   7,
				NumberOfWeeklyBackups:  4,
				NumberOfMonthlyBackups: 12,
				DayOfWeek:              "monday",
			},
		}
	}

	BeforeEach(func() {
		logger = boshlog.NewWriterLogger(boshlog.LevelDebug, GinkgoWriter)
	})

	It("builds ordered batches sized by targets and destinations", func() {
		batches, err := factory.BuildBackupJobs(cfg(), false, logger)

		Expect(err).NotTo(HaveOccurred())
		Expect(batches).To(HaveLen(4))
		Expect(batches[0]).To(HaveLen(4), "one local drive job per target per drive")
		Expect(batches[1]).To(HaveLen(2), "one SMB job per target per share")
		Expect(batches[2]).To(HaveLen(4), "one archive pipeline per target per drive")
		Expect(batches[3]).To(HaveLen(2), "mirror sync plus bundles")
	})

	It("builds empty batches from an empty config", func() {
		batches, err := factory.BuildBackupJobs(config.Config{Strategy: config.Strategy{DayOfWeek: "sunday"}}, false, logger)

		Expect(err).NotTo(HaveOccurred())
		for _, batch := range batches {
			Expect(batch).To(BeEmpty())
		}
	})

	It("rejects an unparseable promotion day", func() {
		broken := cfg()
		broken.Strategy.DayOfWeek = "someday"

		_, err := factory.BuildBackupJobs(broken, false, logger)

		Expect(err).To(MatchError(ContainSubstring("invalid day_of_week")))
	})
})

var _ = Describe("BuildRotations", func() {
	It("pairs each target and drive with its cache directory", func() {
		cfg := config.Config{
			Targets: []config.Target{
				{Name: "photos", Source: "src", Destination: "backups/photos"},
			},
			Destinations: config.Destinations{LocalDrives: []string{"E:/", "F:/"}},
			Strategy:     config.Strategy{DayOfWeek: "sunday"},
		}
		logger := boshlog.NewWriterLogger(boshlog.LevelDebug, GinkgoWriter)

		rotations, err := factory.BuildRotations(cfg, false, logger)

		Expect(err).NotTo(HaveOccurred())
		Expect(rotations).To(HaveLen(2))
		Expect(rotations[0].CacheDir).To(Equal(filepath.Join("E:/", "backups/photos", "cache")))
		Expect(rotations[1].CacheDir).To(Equal(filepath.Join("F:/", "backups/photos", "cache")))
	})
})
