package hyperv

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hoveland/labops/netconfig"

	"github.com/pkg/errors"
)

const tag = "hyperv"

const (
	defaultPollAttempts = 30
	defaultPollInterval = 2 * time.Second
)

var macPattern = regexp.MustCompile(`^[0-9A-Fa-f]{12}$`)

type Logger interface {
	Debug(tag, msg string, args ...interface{})
	Info(tag, msg string, args ...interface{})
	Warn(tag, msg string, args ...interface{})
	Error(tag, msg string, args ...interface{})
}

// ShellRunner is the slice of runner.PowerShell the importer needs.
type ShellRunner interface {
	Run(script string) error
	Output(script string) (string, error)
}

type Options struct {
	Dir        string
	Name       string
	StaticMac  string
	SwitchName string
	Start      bool
}

type Importer struct {
	shell        ShellRunner
	dryRun       bool
	logger       Logger
	pollAttempts int
	pollInterval time.Duration
}

func NewImporter(shell ShellRunner, dryRun bool, logger Logger) Importer {
	return Importer{
		shell:        shell,
		dryRun:       dryRun,
		logger:       logger,
		pollAttempts: defaultPollAttempts,
		pollInterval: defaultPollInterval,
	}
}

func (i Importer) WithPollPolicy(attempts int, interval time.Duration) Importer {
	i.pollAttempts = attempts
	i.pollInterval = interval
	return i
}

// Import registers the exported image as a new VM, applies the optional
// adapter settings and, when asked to start it, waits for the guest to
// report an IPv4 address. The returned string is that address, or empty when
// the VM was not started.
func (i Importer) Import(opts Options) (string, error) {
	if opts.Name == "" {
		return "", errors.New("a VM name is required")
	}
	if opts.StaticMac != "" && !validMac(opts.StaticMac) {
		return "", errors.Errorf("invalid MAC address: %s", opts.StaticMac)
	}

	vmcx, err := ValidateImportLayout(opts.Dir)
	if err != nil {
		return "", err
	}

	i.logger.Info(tag, "importing %s as %s", vmcx, opts.Name)
	if err := i.shell.Run(fmt.Sprintf("Import-VM -Path '%s' -Copy -GenerateNewId | Out-Null", vmcx)); err != nil {
		return "", errors.Wrap(err, "failed to import VM")
	}

	if opts.StaticMac != "" {
		script := fmt.Sprintf("Set-VMNetworkAdapter -VMName '%s' -StaticMacAddress '%s'", opts.Name, normalizeMac(opts.StaticMac))
		if err := i.shell.Run(script); err != nil {
			return "", errors.Wrap(err, "failed to set MAC address")
		}
	}

	if opts.SwitchName != "" {
		script := fmt.Sprintf("Connect-VMNetworkAdapter -VMName '%s' -SwitchName '%s'", opts.Name, opts.SwitchName)
		if err := i.shell.Run(script); err != nil {
			return "", errors.Wrap(err, "failed to connect virtual switch")
		}
	}

	if !opts.Start {
		return "", nil
	}

	if err := i.shell.Run(fmt.Sprintf("Start-VM -Name '%s'", opts.Name)); err != nil {
		return "", errors.Wrap(err, "failed to start VM")
	}

	if i.dryRun {
		i.logger.Info(tag, "dry-run: would wait for %s to report an IPv4 address", opts.Name)
		return "", nil
	}

	return i.waitForIPv4(opts.Name)
}

func (i Importer) waitForIPv4(name string) (string, error) {
	script := fmt.Sprintf("(Get-VMNetworkAdapter -VMName '%s').IPAddresses", name)

	for attempt := 1; attempt <= i.pollAttempts; attempt++ {
		output, err := i.shell.Output(script)
		if err == nil {
			for _, field := range strings.Fields(output) {
				if netconfig.ValidIPv4(field) {
					i.logger.Info(tag, "%s is up at %s", name, field)
					return field, nil
				}
			}
		}

		i.logger.Debug(tag, "waiting for %s to report an address (attempt %d/%d)", name, attempt, i.pollAttempts)
		time.Sleep(i.pollInterval)
	}

	return "", errors.Errorf("%s did not report an IPv4 address", name)
}

func validMac(mac string) bool {
	return macPattern.MatchString(normalizeMac(mac))
}

func normalizeMac(mac string) string {
	replacer := strings.NewReplacer(":", "", "-", "")
	return strings.ToUpper(replacer.Replace(mac))
}
