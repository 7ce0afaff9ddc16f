package rotation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hoveland/labops/writer"

	"github.com/pkg/errors"
)

const tag = "rotation"

// Promotion windows: a daily backup becomes weekly material once it is older
// than a week, a weekly becomes monthly material once it is older than four.
const (
	weeklyWindowDays  = 7
	monthlyWindowDays = 28
)

// Strategy holds the per-tier retention counts and the weekday on which
// daily backups are promoted. A limit of zero or less disables cleanup for
// that tier.
type Strategy struct {
	DailyLimit   int
	WeeklyLimit  int
	MonthlyLimit int
	PromotionDay time.Weekday
}

// Rotator stages fresh backup files into the daily tier, promotes them
// upwards and enforces retention. Every mutating operation honours dry-run
// by logging instead of touching the filesystem; there is no separate
// dry-run code path.
type Rotator struct {
	root     string
	strategy Strategy
	dryRun   bool
	now      func() time.Time
	logger   Logger
}

func NewRotator(root string, strategy Strategy, dryRun bool, logger Logger) *Rotator {
	return NewRotatorWithClock(root, strategy, dryRun, logger, time.Now)
}

func NewRotatorWithClock(root string, strategy Strategy, dryRun bool, logger Logger, now func() time.Time) *Rotator {
	return &Rotator{
		root:     root,
		strategy: strategy,
		dryRun:   dryRun,
		now:      now,
		logger:   logger,
	}
}

// Rotate runs the full pass: stage, promote, clean up. Per-file failures are
// logged and collected, never abort the loop.
func (r *Rotator) Rotate(cacheDir string) []error {
	var errs []error

	if err := r.ensureTierDirs(); err != nil {
		return []error{err}
	}

	errs = append(errs, r.StageDaily(cacheDir)...)
	errs = append(errs, r.Promote()...)
	errs = append(errs, r.ApplyRetention()...)

	return errs
}

// StageDaily moves every file in cacheDir into the daily tier, tagging it
// with today's date. Files that already carry a tier tag are left alone, so
// a re-run never double-tags.
func (r *Rotator) StageDaily(cacheDir string) []error {
	var errs []error

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return []error{errors.Wrapf(err, "failed to list cache directory %s", cacheDir)}
	}

	today := r.today()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if _, tagged := ParseArtifactName(name); tagged {
			r.logger.Debug(tag, "%s already carries a date tag, skipping", name)
			continue
		}

		src := filepath.Join(cacheDir, name)
		dst := filepath.Join(r.tierDir(TierDaily), TaggedName(name, TierDaily, today))
		if err := r.move(src, dst); err != nil {
			r.logger.Error(tag, "failed to stage %s: %v", name, err)
			errs = append(errs, err)
		}
	}

	return errs
}

// Promote raises eligible weekly backups to monthly, then eligible daily
// backups to weekly. daily->weekly copies; weekly->monthly moves, so a
// promoted weekly leaves its tier. The asymmetry is deliberate and mirrors
// how the backup sets have always been laid out on disk.
func (r *Rotator) Promote() []error {
	var errs []error
	errs = append(errs, r.promoteTier(TierWeekly, TierMonthly, monthlyWindowDays, true)...)
	errs = append(errs, r.promoteTier(TierDaily, TierWeekly, weeklyWindowDays, false)...)
	return errs
}

func (r *Rotator) promoteTier(from, to Tier, windowDays int, destructive bool) []error {
	var errs []error

	groups, err := r.listTier(from)
	if err != nil {
		return []error{err}
	}

	cutoff := r.today().AddDate(0, 0, -windowDays)

	for base, files := range groups {
		candidate, found := newestEligibleDate(files, r.strategy.PromotionDay, cutoff)
		if !found {
			continue
		}

		promoted, err := r.tierHasDate(to, base, candidate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if promoted {
			r.logger.Debug(tag, "%s backup of %s for %s already exists, skipping promotion",
				to, base, candidate.Format(dateLayout))
			continue
		}

		for _, file := range files {
			if !file.parsed.Date.Equal(candidate) {
				continue
			}

			src := filepath.Join(r.tierDir(from), file.name)
			dst := filepath.Join(r.tierDir(to), file.parsed.WithTier(to).Filename())

			var opErr error
			if destructive {
				opErr = r.move(src, dst)
			} else {
				opErr = r.copy(src, dst)
			}
			if opErr != nil {
				r.logger.Error(tag, "failed to promote %s to %s: %v", file.name, to, opErr)
				errs = append(errs, opErr)
			}
		}
	}

	return errs
}

// ApplyRetention keeps the newest N unique dates per base name in each tier
// and deletes everything older, sidecars included.
func (r *Rotator) ApplyRetention() []error {
	var errs []error

	limits := []struct {
		tier  Tier
		limit int
	}{
		{TierDaily, r.strategy.DailyLimit},
		{TierWeekly, r.strategy.WeeklyLimit},
		{TierMonthly, r.strategy.MonthlyLimit},
	}

	for _, tierLimit := range limits {
		if tierLimit.limit <= 0 {
			r.logger.Debug(tag, "retention disabled for %s tier", tierLimit.tier)
			continue
		}
		errs = append(errs, r.cleanTier(tierLimit.tier, tierLimit.limit)...)
	}

	return errs
}

func (r *Rotator) cleanTier(tier Tier, limit int) []error {
	var errs []error

	groups, err := r.listTier(tier)
	if err != nil {
		return []error{err}
	}

	for base, files := range groups {
		dates := uniqueDatesDescending(files)
		if len(dates) <= limit {
			continue
		}

		for _, stale := range dates[limit:] {
			for _, file := range files {
				if !file.parsed.Date.Equal(stale) {
					continue
				}

				r.logger.Info(tag, "removing expired %s backup %s", tier, file.name)
				if err := r.remove(filepath.Join(r.tierDir(tier), file.name)); err != nil {
					r.logger.Error(tag, "failed to remove %s: %v", file.name, err)
					errs = append(errs, err)
				}
			}
		}
		r.logger.Debug(tag, "%s tier of %s: kept %d of %d dates", tier, base, limit, len(dates))
	}

	return errs
}

type artifactFile struct {
	name   string
	parsed ArtifactName
}

func (r *Rotator) listTier(tier Tier) (map[string][]artifactFile, error) {
	dir := r.tierDir(tier)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]artifactFile{}, nil
		}
		return nil, errors.Wrapf(err, "failed to list %s tier", tier)
	}

	groups := map[string][]artifactFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		parsed, ok := ParseArtifactName(entry.Name())
		if !ok {
			r.logger.Debug(tag, "ignoring unrecognised file %s in %s tier", entry.Name(), tier)
			continue
		}
		groups[parsed.Base] = append(groups[parsed.Base], artifactFile{name: entry.Name(), parsed: parsed})
	}

	return groups, nil
}

func (r *Rotator) tierHasDate(tier Tier, base string, date time.Time) (bool, error) {
	groups, err := r.listTier(tier)
	if err != nil {
		return false, err
	}
	for _, file := range groups[base] {
		if file.parsed.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Rotator) ensureTierDirs() error {
	for _, tier := range []Tier{TierDaily, TierWeekly, TierMonthly} {
		dir := r.tierDir(tier)
		if r.dryRun {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				r.logger.Info(tag, "dry-run: would create %s", dir)
			}
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s tier directory", tier)
		}
	}
	return nil
}

func (r *Rotator) tierDir(tier Tier) string {
	return filepath.Join(r.root, string(tier))
}

func (r *Rotator) today() time.Time {
	now := r.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *Rotator) move(src, dst string) error {
	if r.dryRun {
		r.logger.Info(tag, "dry-run: would move %s to %s", src, dst)
		return nil
	}

	r.logger.Debug(tag, "moving %s to %s", src, dst)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// rename fails across filesystems; fall back to copy-then-delete
	if err := r.copyFile(src, dst); err != nil {
		return errors.Wrapf(err, "failed to move %s to %s", src, dst)
	}
	return errors.Wrapf(os.Remove(src), "failed to remove %s after copying", src)
}

func (r *Rotator) copy(src, dst string) error {
	if r.dryRun {
		r.logger.Info(tag, "dry-run: would copy %s to %s", src, dst)
		return nil
	}

	r.logger.Debug(tag, "copying %s to %s", src, dst)
	return r.copyFile(src, dst)
}

func (r *Rotator) remove(path string) error {
	if r.dryRun {
		r.logger.Info(tag, "dry-run: would remove %s", path)
		return nil
	}

	return errors.Wrapf(os.Remove(path), "failed to remove %s", path)
}

func (r *Rotator) copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	percentageMessage := fmt.Sprintf("copying %s -- %%d%%%% complete", filepath.Base(src))
	progress := writer.NewLogPercentageWriter(out, r.logger, int(info.Size()), tag, percentageMessage)
	if _, err := io.Copy(progress, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func newestEligibleDate(files []artifactFile, promotionDay time.Weekday, cutoff time.Time) (time.Time, bool) {
	var newest time.Time
	var found bool

	for _, file := range files {
		date := file.parsed.Date
		if date.Weekday() != promotionDay || !date.Before(cutoff) {
			continue
		}
		if !found || date.After(newest) {
			newest = date
			found = true
		}
	}

	return newest, found
}

func uniqueDatesDescending(files []artifactFile) []time.Time {
	seen := map[time.Time]bool{}
	var dates []time.Time
	for _, file := range files {
		if !seen[file.parsed.Date] {
			seen[file.parsed.Date] = true
			dates = append(dates, file.parsed.Date)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}
