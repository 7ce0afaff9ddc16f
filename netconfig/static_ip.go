// Package netconfig assigns static IPv4 addresses to remote hosts through
// their NetworkManager, over SSH.
package netconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/hoveland/labops/ssh"

	"github.com/pkg/errors"
)

const tag = "static-ip"

type Logger interface {
	Debug(tag, msg string, args ...interface{})
	Info(tag, msg string, args ...interface{})
	Warn(tag, msg string, args ...interface{})
	Error(tag, msg string, args ...interface{})
}

// RunnerFactory opens an SSH session factory against a host. The
// configurator needs two of them: one to the current address, one to the new
// address for verification.
type RunnerFactory func(host string) (ssh.RemoteRunner, error)

type Options struct {
	// Host is the address the machine answers on right now.
	Host string
	// ConnectionName is the NetworkManager connection to modify.
	ConnectionName string
	// Address is the new static address in CIDR notation.
	Address string
	Gateway string
	DNS     []string
}

type Configurator struct {
	newRunner      RunnerFactory
	dryRun         bool
	logger         Logger
	verifyAttempts int
	verifyInterval time.Duration
}

func NewConfigurator(newRunner RunnerFactory, dryRun bool, logger Logger) Configurator {
	return Configurator{
		newRunner:      newRunner,
		dryRun:         dryRun,
		logger:         logger,
		verifyAttempts: 5,
		verifyInterval: 2 * time.Second,
	}
}

// WithVerifyPolicy overrides how often and how long Apply polls the new
// address.
func (c Configurator) WithVerifyPolicy(attempts int, interval time.Duration) Configurator {
	c.verifyAttempts = attempts
	c.verifyInterval = interval
	return c
}

// Apply validates the inputs, rewrites the NetworkManager connection to the
// static address and verifies the host answers on it afterwards.
func (c Configurator) Apply(opts Options) error {
	if err := validateOptions(opts); err != nil {
		return err
	}

	modCmd := buildModifyCommand(opts)
	upCmd := fmt.Sprintf("sudo nmcli con up '%s'", opts.ConnectionName)

	if c.dryRun {
		c.logger.Info(tag, "dry-run: would run %q then %q on %s", modCmd, upCmd, opts.Host)
		return nil
	}

	runner, err := c.newRunner(opts.Host)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", opts.Host)
	}

	c.logger.Info(tag, "setting %s to %s", opts.Host, opts.Address)
	if _, err := runner.RunCommand(modCmd, "nmcli-mod"); err != nil {
		return errors.Wrap(err, "failed to modify connection")
	}

	// reactivating the connection drops our session once the address
	// changes, so fire and forget, then verify over a fresh connection
	if err := runner.RunDetached(upCmd, "nmcli-up"); err != nil {
		return errors.Wrap(err, "failed to reactivate connection")
	}

	return c.verify(strings.Split(opts.Address, "/")[0])
}

func (c Configurator) verify(newAddress string) error {
	var lastErr error

	for attempt := 1; attempt <= c.verifyAttempts; attempt++ {
		time.Sleep(c.verifyInterval)

		runner, err := c.newRunner(newAddress)
		if err != nil {
			lastErr = err
			c.logger.Debug(tag, "verify attempt %d: %v", attempt, err)
			continue
		}

		out, err := runner.RunCommand("ip -4 addr show", "verify")
		if err != nil {
			lastErr = err
			continue
		}

		if strings.Contains(out, newAddress) {
			c.logger.Info(tag, "%s now answers on its static address", newAddress)
			return nil
		}
		lastErr = errors.Errorf("%s does not report the new address", newAddress)
	}

	return errors.Wrapf(lastErr, "failed to verify new address %s", newAddress)
}

func validateOptions(opts Options) error {
	if opts.Host == "" {
		return errors.New("host is required")
	}
	if opts.ConnectionName == "" {
		return errors.New("connection name is required")
	}
	if !ValidCIDR(opts.Address) {
		return errors.Errorf("invalid address %q, expected <ipv4>/<prefix>", opts.Address)
	}
	if opts.Gateway != "" && !ValidIPv4(opts.Gateway) {
		return errors.Errorf("invalid gateway %q", opts.Gateway)
	}
	for _, dns := range opts.DNS {
		if !ValidIPv4(dns) && !ValidHostname(dns) {
			return errors.Errorf("invalid DNS server %q", dns)
		}
	}
	return nil
}

func buildModifyCommand(opts Options) string {
	parts := []string{
		fmt.Sprintf("sudo nmcli con mod '%s'", opts.ConnectionName),
		"ipv4.method manual",
		fmt.Sprintf("ipv4.addresses %s", opts.Address),
	}
	if opts.Gateway != "" {
		parts = append(parts, fmt.Sprintf("ipv4.gateway %s", opts.Gateway))
	}
	if len(opts.DNS) > 0 {
		parts = append(parts, fmt.Sprintf("ipv4.dns '%s'", strings.Join(opts.DNS, " ")))
	}
	return strings.Join(parts, " ")
}
