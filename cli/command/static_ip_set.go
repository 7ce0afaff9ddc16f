package command

import (
	"github.com/hoveland/labops/cli/flags"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/netconfig"
	"github.com/hoveland/labops/ssh"

	"github.com/urfave/cli"
)

type StaticIPSetCommand struct {
}

func NewStaticIPSetCommand() StaticIPSetCommand {
	return StaticIPSetCommand{}
}

func (s StaticIPSetCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "set",
		Usage:  "Give a remote host a static IP through nmcli over SSH",
		Action: s.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "host",
				Usage: "Host to configure, current address",
			},
			cli.StringFlag{
				Name:  "user, u",
				Usage: "SSH username",
			},
			cli.StringFlag{
				Name:  "key, k",
				Usage: "Path to the SSH private key",
			},
			cli.StringFlag{
				Name:  "known-hosts",
				Usage: "Path to a known_hosts file, empty skips host key checks",
			},
			cli.StringFlag{
				Name:  "connection",
				Usage: "NetworkManager connection name to modify",
			},
			cli.StringFlag{
				Name:  "address",
				Usage: "New address in CIDR notation, e.g. 192.168.1.100/24",
			},
			cli.StringFlag{
				Name:  "gateway",
				Usage: "Default gateway",
			},
			cli.StringSliceFlag{
				Name:  "dns",
				Usage: "DNS server, repeatable",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without touching the network",
			},
		},
	}
}

func (s StaticIPSetCommand) Action(c *cli.Context) error {
	if err := flags.Validate([]string{"host", "user", "key", "connection", "address"}, c); err != nil {
		return err
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))

	newRunner := func(host string) (ssh.RemoteRunner, error) {
		return factory.BuildRemoteRunner(host, c.String("user"), c.String("key"), c.String("known-hosts"), logger)
	}

	configurator := netconfig.NewConfigurator(newRunner, c.Bool("dry-run"), logger)
	err := configurator.Apply(netconfig.Options{
		Host:           c.String("host"),
		ConnectionName: c.String("connection"),
		Address:        c.String("address"),
		Gateway:        c.String("gateway"),
		DNS:            c.StringSlice("dns"),
	})
	if err != nil {
		return redCliError(err)
	}

	return nil
}
