package ssh

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

type SSHConnection interface {
	Run(cmd string) ([]byte, []byte, int, error)
	Stream(cmd string, writer io.Writer) ([]byte, int, error)
	StreamStdin(cmd string, reader io.Reader) ([]byte, []byte, int, error)
	Username() string
	Host() string
}

type Connection struct {
	host      string
	sshConfig *ssh.ClientConfig
	logger    Logger
}

// NewConnection prepares an SSH connection with private key auth. The host
// may omit the port; 22 is assumed. Each command runs in a fresh session on
// a fresh dial, so a connection dropped by the remote side (say, after
// reconfiguring its address) does not poison later commands.
func NewConnection(host, user, privateKey string, hostKeyCallback ssh.HostKeyCallback, logger Logger) (SSHConnection, error) {
	parsedPrivateKey, err := ssh.ParsePrivateKey([]byte(privateKey))
	if err != nil {
		return nil, errors.Wrap(err, "ssh.NewConnection.ParsePrivateKey failed")
	}

	return Connection{
		host: defaultToSSHPort(host),
		sshConfig: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(parsedPrivateKey)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         30 * time.Second,
		},
		logger: logger,
	}, nil
}

func (c Connection) Run(cmd string) ([]byte, []byte, int, error) {
	stdout := &bytes.Buffer{}
	stderr, exitCode, err := c.Stream(cmd, stdout)
	return stdout.Bytes(), stderr, exitCode, err
}

func (c Connection) Stream(cmd string, writer io.Writer) ([]byte, int, error) {
	return c.runInSession(cmd, writer, nil)
}

func (c Connection) StreamStdin(cmd string, reader io.Reader) ([]byte, []byte, int, error) {
	stdout := &bytes.Buffer{}
	stderr, exitCode, err := c.runInSession(cmd, stdout, reader)
	return stdout.Bytes(), stderr, exitCode, err
}

func (c Connection) Username() string {
	return c.sshConfig.User
}

func (c Connection) Host() string {
	return c.host
}

func (c Connection) runInSession(cmd string, stdout io.Writer, stdin io.Reader) ([]byte, int, error) {
	c.logger.Debug("ssh", "running %q on %s", cmd, c.host)

	client, err := ssh.Dial("tcp", c.host, c.sshConfig)
	if err != nil {
		return nil, -1, errors.Wrapf(err, "ssh.Dial to %s failed", c.host)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, -1, errors.Wrap(err, "ssh.NewSession failed")
	}
	defer session.Close()

	stderr := &bytes.Buffer{}
	session.Stdout = stdout
	session.Stderr = stderr
	session.Stdin = stdin

	exitCode := 0
	if err := session.Run(cmd); err != nil {
		exitErr, ok := err.(*ssh.ExitError)
		if !ok {
			return stderr.Bytes(), -1, errors.Wrap(err, "ssh session failed")
		}
		exitCode = exitErr.ExitStatus()
	}

	return stderr.Bytes(), exitCode, nil
}

func defaultToSSHPort(host string) string {
	if strings.Contains(host, ":") {
		return host
	}
	return host + ":22"
}
