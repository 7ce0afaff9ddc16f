package factory

import (
	"os"

	"github.com/hoveland/labops/ssh"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	"github.com/pkg/errors"
)

// BuildRemoteRunner dials host as username with the private key at keyPath.
// An empty knownHostsPath skips host key verification.
func BuildRemoteRunner(host, username, keyPath, knownHostsPath string, logger boshlog.Logger) (ssh.RemoteRunner, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read private key %s", keyPath)
	}

	callback, err := ssh.HostKeyCallbackFromFile(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return ssh.NewRemoteRunner(host, username, string(key), callback, logger)
}
