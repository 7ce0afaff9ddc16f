package rotation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Tier is a retention bucket. Each tier lives in its own folder under the
// backup root.
type Tier string

const (
	TierDaily   Tier = "daily"
	TierWeekly  Tier = "weekly"
	TierMonthly Tier = "monthly"
)

const dateLayout = "20060102"

// Artifact names follow <base>-<tier>-<YYYYMMDD>-<dayname><extensions>.
// The base may itself contain separators; the tier token anchors the parse.
// A .par2 sidecar keeps the full stem of its data file, so it parses to the
// same base and date and travels with its group.
var artifactPattern = regexp.MustCompile(`^(.+)-(daily|weekly|monthly)-(\d{8})-([a-z]+)(\..*)?$`)

type ArtifactName struct {
	Base string
	Tier Tier
	Date time.Time
	Ext  string
}

// ParseArtifactName reports whether filename already carries a tier tag, and
// if so, its parts.
func ParseArtifactName(filename string) (ArtifactName, bool) {
	match := artifactPattern.FindStringSubmatch(filename)
	if match == nil {
		return ArtifactName{}, false
	}

	date, err := time.Parse(dateLayout, match[3])
	if err != nil {
		return ArtifactName{}, false
	}

	return ArtifactName{
		Base: match[1],
		Tier: Tier(match[2]),
		Date: date,
		Ext:  match[5],
	}, true
}

func (a ArtifactName) Filename() string {
	return fmt.Sprintf("%s-%s-%s-%s%s", a.Base, a.Tier, a.Date.Format(dateLayout), dayName(a.Date), a.Ext)
}

func (a ArtifactName) WithTier(tier Tier) ArtifactName {
	a.Tier = tier
	return a
}

// TaggedName inserts a tier tag between an untagged filename's stem and its
// trailing extension(s), so "photos.tar.gz" becomes
// "photos-daily-20060102-monday.tar.gz".
func TaggedName(filename string, tier Tier, date time.Time) string {
	stem, ext := splitExtensions(filename)
	return fmt.Sprintf("%s-%s-%s-%s%s", stem, tier, date.Format(dateLayout), dayName(date), ext)
}

func splitExtensions(filename string) (string, string) {
	if i := strings.Index(filename, "."); i > 0 {
		return filename[:i], filename[i:]
	}
	return filename, ""
}

func dayName(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}
