package ssh

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// HostKeyScanner fetches the current known_hosts lines for a host, the way
// ssh-keyscan would.
type HostKeyScanner interface {
	Scan(host string) ([]string, error)
}

// Refresher rewrites a known_hosts file: stale entries for each host are
// dropped and freshly scanned keys appended. One unreachable host is logged
// and skipped, the rest still get refreshed.
type Refresher struct {
	path    string
	scanner HostKeyScanner
	dryRun  bool
	logger  Logger
}

func NewRefresher(path string, scanner HostKeyScanner, dryRun bool, logger Logger) Refresher {
	return Refresher{path: path, scanner: scanner, dryRun: dryRun, logger: logger}
}

func (r Refresher) Refresh(hosts []string) []error {
	var errs []error

	content := ""
	if raw, err := os.ReadFile(r.path); err == nil {
		content = string(raw)
	} else if !os.IsNotExist(err) {
		return []error{errors.Wrapf(err, "failed to read %s", r.path)}
	}

	for _, host := range hosts {
		content = RemoveHostLines(content, host)

		lines, err := r.scanner.Scan(host)
		if err != nil {
			r.logger.Error("known-hosts", "failed to scan %s: %v", host, err)
			errs = append(errs, errors.Wrapf(err, "failed to scan %s", host))
			continue
		}

		r.logger.Info("known-hosts", "refreshed %d key(s) for %s", len(lines), host)
		for _, line := range lines {
			content += line + "\n"
		}
	}

	if r.dryRun {
		r.logger.Info("known-hosts", "dry-run: would rewrite %s", r.path)
		return errs
	}

	if err := atomicWrite(r.path, []byte(content), 0600); err != nil {
		errs = append(errs, errors.Wrapf(err, "failed to rewrite %s", r.path))
	}

	return errs
}

// RemoveHostLines drops every plain-address known_hosts line mentioning the
// host. Hashed lines are left in place; they cannot be matched without the
// key and a fresh scan appends an unhashed replacement anyway.
func RemoveHostLines(content, host string) string {
	normalized := knownhosts.Normalize(host)

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "|") {
			kept = append(kept, line)
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 3 {
			kept = append(kept, line)
			continue
		}

		if matchesHost(fields[0], normalized) {
			continue
		}
		kept = append(kept, line)
	}

	result := strings.Join(kept, "\n")
	result = strings.TrimRight(result, "\n")
	if result != "" {
		result += "\n"
	}
	return result
}

func matchesHost(patterns, normalizedHost string) bool {
	for _, pattern := range strings.Split(patterns, ",") {
		if knownhosts.Normalize(pattern) == normalizedHost {
			return true
		}
	}
	return false
}

// DialScanner collects host keys by dialing the host once per key algorithm
// family and recording what it presents, then aborting the handshake.
type DialScanner struct {
	Timeout time.Duration
}

var scanAlgorithms = [][]string{
	{ssh.KeyAlgoED25519},
	{ssh.KeyAlgoECDSA256, ssh.KeyAlgoECDSA384, ssh.KeyAlgoECDSA521},
	{ssh.KeyAlgoRSASHA512, ssh.KeyAlgoRSASHA256, ssh.KeyAlgoRSA},
}

func (s DialScanner) Scan(host string) ([]string, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	address := defaultToSSHPort(host)

	var lines []string
	for _, algorithms := range scanAlgorithms {
		var captured ssh.PublicKey

		config := &ssh.ClientConfig{
			User:              "labops-keyscan",
			HostKeyAlgorithms: algorithms,
			Timeout:           timeout,
			HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
				captured = key
				return fmt.Errorf("host key captured")
			},
		}

		// the dial always errors: either the host has no key of this
		// family, or our callback aborted the handshake on purpose
		client, err := ssh.Dial("tcp", address, config)
		if err == nil {
			client.Close()
		}

		if captured != nil {
			lines = append(lines, knownhosts.Line([]string{host}, captured))
		}
	}

	if len(lines) == 0 {
		return nil, errors.Errorf("no host keys collected from %s", host)
	}

	return lines, nil
}

// HostKeyCallbackFromFile builds the host key check from a known_hosts
// file. An empty path skips verification, which is how ad-hoc homelab boxes
// get bootstrapped before `known-hosts refresh` has run against them.
func HostKeyCallbackFromFile(path string) (ssh.HostKeyCallback, error) {
	if path == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load known_hosts file %s", path)
	}
	return callback, nil
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
