// Package config loads the labops backup configuration: a TOML document
// naming backup targets, destinations, external tool handlers and the
// rotation strategy.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigPath points at the TOML file when --config is not given.
	EnvConfigPath = "LABOPS_CONFIG"
	// EnvRunnerExe names the remote job runner executable.
	EnvRunnerExe = "LABOPS_RUNNER_EXE"

	defaultConfigFile = "labops.toml"
)

type Config struct {
	Targets      []Target     `mapstructure:"targets"`
	Destinations Destinations `mapstructure:"destinations"`
	Handlers     Handlers     `mapstructure:"handlers"`
	Strategy     Strategy     `mapstructure:"strategy"`
}

type Target struct {
	Name        string `mapstructure:"name"`
	Source      string `mapstructure:"source"`
	Destination string `mapstructure:"destination"`
	Description string `mapstructure:"description"`
}

type Destinations struct {
	LocalDrives  []string      `mapstructure:"local_drives"`
	SmbShares    []string      `mapstructure:"smb_shares"`
	MirrorClones []MirrorClone `mapstructure:"mirror_clones"`
	GitBundles   []GitBundle   `mapstructure:"git_bundles"`
}

type MirrorClone struct {
	Root string `mapstructure:"root"`
}

type GitBundle struct {
	Root        string `mapstructure:"root"`
	Destination string `mapstructure:"destination"`
}

type Handlers struct {
	Robocopy RobocopyHandler `mapstructure:"robocopy"`
	SevenZip SevenZipHandler `mapstructure:"7zip"`
	MultiPar MultiParHandler `mapstructure:"multipar"`
}

type RobocopyHandler struct {
	Exe     string   `mapstructure:"exe"`
	Options []string `mapstructure:"options"`
}

type SevenZipHandler struct {
	Exe        string   `mapstructure:"exe"`
	Options    []string `mapstructure:"options"`
	VolumeSize string   `mapstructure:"volume_size"`
}

type MultiParHandler struct {
	Exe            string   `mapstructure:"exe"`
	Options        []string `mapstructure:"options"`
	RedundancyRate int      `mapstructure:"redundancy_rate"`
}

type Strategy struct {
	NumberOfDailyBackups   int    `mapstructure:"number_of_daily_backups"`
	NumberOfWeeklyBackups  int    `mapstructure:"number_of_weekly_backups"`
	NumberOfMonthlyBackups int    `mapstructure:"number_of_monthly_backups"`
	DayOfWeek              string `mapstructure:"day_of_week"`
}

// PromotionDay parses the configured day_of_week name.
func (s Strategy) PromotionDay() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s.DayOfWeek))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.ToLower(day.String()) == name {
			return day, nil
		}
	}
	return time.Sunday, errors.Errorf("invalid day_of_week %q", s.DayOfWeek)
}

// Load reads the configuration file. An empty path falls back to the
// LABOPS_CONFIG environment variable and then to ./labops.toml. A .env file
// in the working directory is folded into the environment first, when one
// exists.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = defaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Strategy.NumberOfDailyBackups == 0 {
		cfg.Strategy.NumberOfDailyBackups = 7
	}
	if cfg.Strategy.NumberOfWeeklyBackups == 0 {
		cfg.Strategy.NumberOfWeeklyBackups = 4
	}
	if cfg.Strategy.NumberOfMonthlyBackups == 0 {
		cfg.Strategy.NumberOfMonthlyBackups = 12
	}
	if cfg.Strategy.DayOfWeek == "" {
		cfg.Strategy.DayOfWeek = "sunday"
	}
}

func (c Config) Validate() error {
	for _, target := range c.Targets {
		if target.Name == "" {
			return errors.New("every target needs a name")
		}
		if target.Source == "" {
			return errors.Errorf("target %s has no source", target.Name)
		}
		if target.Destination == "" {
			return errors.Errorf("target %s has no destination", target.Name)
		}
	}

	for _, bundle := range c.Destinations.GitBundles {
		if bundle.Root == "" || bundle.Destination == "" {
			return errors.New("git_bundles entries need both root and destination")
		}
	}

	for _, clone := range c.Destinations.MirrorClones {
		if clone.Root == "" {
			return errors.New("mirror_clones entries need a root")
		}
	}

	if _, err := c.Strategy.PromotionDay(); err != nil {
		return err
	}

	return nil
}
