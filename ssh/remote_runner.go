package ssh

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

type RemoteRunner interface {
	ConnectedUsername() string
	ConnectedHost() string
	RunCommand(cmd, label string) (string, error)
	RunDetached(cmd, label string) error
	ProcessRunning(pattern string) (bool, error)
}

type sshRemoteRunner struct {
	logger     Logger
	connection SSHConnection
}

func NewRemoteRunner(host, user, privateKey string, hostKeyCallback ssh.HostKeyCallback, logger Logger) (RemoteRunner, error) {
	connection, err := NewConnection(host, user, privateKey, hostKeyCallback, logger)
	if err != nil {
		return nil, err
	}

	return sshRemoteRunner{connection: connection, logger: logger}, nil
}

// NewRemoteRunnerWithConnection exists for wiring a prepared or fake
// connection.
func NewRemoteRunnerWithConnection(connection SSHConnection, logger Logger) RemoteRunner {
	return sshRemoteRunner{connection: connection, logger: logger}
}

func (r sshRemoteRunner) ConnectedUsername() string {
	return r.connection.Username()
}

func (r sshRemoteRunner) ConnectedHost() string {
	return r.connection.Host()
}

func (r sshRemoteRunner) RunCommand(cmd, label string) (string, error) {
	stdout, stderr, exitCode, runErr := r.connection.Run(cmd)

	r.logOutput(stdout, stderr, label)

	if runErr != nil {
		return "", runErr
	}
	if exitCode != 0 {
		return "", exitError(stderr, exitCode)
	}

	return string(stdout), nil
}

// RunDetached starts a long-lived process on the remote host and returns
// without waiting for it.
func (r sshRemoteRunner) RunDetached(cmd, label string) error {
	detached := fmt.Sprintf("nohup sh -c '%s' >/dev/null 2>&1 &", cmd)
	_, err := r.RunCommand(detached, label)
	return err
}

func (r sshRemoteRunner) ProcessRunning(pattern string) (bool, error) {
	_, _, exitCode, err := r.connection.Run(fmt.Sprintf("pgrep -f '%s'", pattern))
	if err != nil {
		return false, err
	}
	return exitCode == 0, nil
}

func (r sshRemoteRunner) logOutput(stdout, stderr []byte, label string) {
	if label != "" {
		r.logger.Debug("ssh", "[%s] stdout: %s", label, string(stdout))
		r.logger.Debug("ssh", "[%s] stderr: %s", label, string(stderr))
	} else {
		r.logger.Debug("ssh", "stdout: %s", string(stdout))
		r.logger.Debug("ssh", "stderr: %s", string(stderr))
	}
}

func exitError(stderr []byte, exitCode int) error {
	return errors.Errorf("%s - exit code %d", strings.TrimSpace(string(stderr)), exitCode)
}
