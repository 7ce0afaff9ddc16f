package rotation_test

import (
	"time"

	. "github.com/hoveland/labops/rotation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseArtifactName", func() {
	It("parses a daily artifact", func() {
		name, ok := ParseArtifactName("photos-daily-20250101-wednesday.7z")

		Expect(ok).To(BeTrue())
		Expect(name.Base).To(Equal("photos"))
		Expect(name.Tier).To(Equal(TierDaily))
		Expect(name.Date).To(Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		Expect(name.Ext).To(Equal(".7z"))
	})

	It("parses a weekly artifact with stacked extensions", func() {
		name, ok := ParseArtifactName("music-weekly-20250105-sunday.tar.gz")

		Expect(ok).To(BeTrue())
		Expect(name.Base).To(Equal("music"))
		Expect(name.Tier).To(Equal(TierWeekly))
		Expect(name.Ext).To(Equal(".tar.gz"))
	})

	It("parses a parity sidecar to the same base and date as its data file", func() {
		data, ok := ParseArtifactName("photos-daily-20250101-wednesday.7z")
		Expect(ok).To(BeTrue())

		sidecar, ok := ParseArtifactName("photos-daily-20250101-wednesday.7z.par2")
		Expect(ok).To(BeTrue())

		Expect(sidecar.Base).To(Equal(data.Base))
		Expect(sidecar.Date).To(Equal(data.Date))
		Expect(sidecar.Ext).To(Equal(".7z.par2"))
	})

	It("keeps separators inside the base name", func() {
		name, ok := ParseArtifactName("my-home-dir-monthly-20250601-sunday.7z")

		Expect(ok).To(BeTrue())
		Expect(name.Base).To(Equal("my-home-dir"))
		Expect(name.Tier).To(Equal(TierMonthly))
	})

	It("rejects an untagged filename", func() {
		_, ok := ParseArtifactName("photos.7z")
		Expect(ok).To(BeFalse())
	})

	It("rejects a truncated date", func() {
		_, ok := ParseArtifactName("photos-daily-2025010-monday.7z")
		Expect(ok).To(BeFalse())
	})

	It("rejects an unknown tier", func() {
		_, ok := ParseArtifactName("photos-yearly-20250101-wednesday.7z")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ArtifactName", func() {
	It("round-trips through Filename", func() {
		original := "photos-daily-20250101-wednesday.7z"

		name, ok := ParseArtifactName(original)
		Expect(ok).To(BeTrue())
		Expect(name.Filename()).To(Equal(original))
	})

	It("renames across tiers keeping date and extensions", func() {
		name, ok := ParseArtifactName("photos-daily-20250101-wednesday.7z.par2")
		Expect(ok).To(BeTrue())

		Expect(name.WithTier(TierWeekly).Filename()).To(Equal("photos-weekly-20250101-wednesday.7z.par2"))
	})
})

var _ = Describe("TaggedName", func() {
	date := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC) // a Wednesday

	It("inserts the tag before the extension", func() {
		Expect(TaggedName("photos.7z", TierDaily, date)).To(Equal("photos-daily-20250618-wednesday.7z"))
	})

	It("inserts the tag before stacked extensions", func() {
		Expect(TaggedName("db.tar.gz", TierDaily, date)).To(Equal("db-daily-20250618-wednesday.tar.gz"))
	})

	It("tags extensionless files", func() {
		Expect(TaggedName("notes", TierDaily, date)).To(Equal("notes-daily-20250618-wednesday"))
	})

	It("produces a name that parses back", func() {
		name, ok := ParseArtifactName(TaggedName("photos.7z.par2", TierDaily, date))

		Expect(ok).To(BeTrue())
		Expect(name.Base).To(Equal("photos"))
		Expect(name.Ext).To(Equal(".7z.par2"))
	})
})
