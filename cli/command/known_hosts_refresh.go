package command

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/ssh"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type KnownHostsRefreshCommand struct {
}

func NewKnownHostsRefreshCommand() KnownHostsRefreshCommand {
	return KnownHostsRefreshCommand{}
}

func (k KnownHostsRefreshCommand) Cli() cli.Command {
	return cli.Command{
		Name:      "refresh",
		Usage:     "Replace the known_hosts entries of the given hosts with freshly scanned keys",
		ArgsUsage: "HOST [HOST...]",
		Action:    k.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "file, f",
				Usage: "known_hosts file to rewrite, defaults to ~/.ssh/known_hosts",
			},
			cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-host scan timeout",
				Value: 10 * time.Second,
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without rewriting the file",
			},
		},
	}
}

func (k KnownHostsRefreshCommand) Action(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, c.Command.Name)
		return redCliError(errors.New("at least one host is required."))
	}

	path := c.String("file")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return redCliError(errors.Wrap(err, "cannot locate the default known_hosts file"))
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))
	scanner := ssh.DialScanner{Timeout: c.Duration("timeout")}
	refresher := ssh.NewRefresher(path, scanner, c.Bool("dry-run"), logger)

	errs := refresher.Refresh(c.Args())
	return processError(orchestrator.NewError(errs...))
}
