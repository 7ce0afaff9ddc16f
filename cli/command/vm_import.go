package command

import (
	"fmt"

	"github.com/hoveland/labops/cli/flags"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/hyperv"
	"github.com/hoveland/labops/netconfig"
	"github.com/hoveland/labops/runner"
	"github.com/hoveland/labops/ssh"

	"github.com/urfave/cli"
)

type VMImportCommand struct {
}

func NewVMImportCommand() VMImportCommand {
	return VMImportCommand{}
}

func (v VMImportCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "import",
		Usage:  "Import an exported Hyper-V image as a new VM",
		Action: v.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "dir, d",
				Usage: "Export directory with 'Virtual Hard Disks' and 'Virtual Machines' folders",
			},
			cli.StringFlag{
				Name:  "name, n",
				Usage: "Name of the imported VM",
			},
			cli.StringFlag{
				Name:  "mac",
				Usage: "Static MAC address for the VM's adapter",
			},
			cli.StringFlag{
				Name:  "switch",
				Usage: "Virtual switch to connect the adapter to",
			},
			cli.BoolFlag{
				Name:  "start",
				Usage: "Start the VM and wait for it to report an IPv4 address",
			},
			cli.StringFlag{
				Name:  "address",
				Usage: "Static address in CIDR notation to configure in the guest once it is up (implies --start)",
			},
			cli.StringFlag{
				Name:  "gateway",
				Usage: "Default gateway for the guest",
			},
			cli.StringSliceFlag{
				Name:  "dns",
				Usage: "DNS server for the guest, repeatable",
			},
			cli.StringFlag{
				Name:  "connection",
				Usage: "NetworkManager connection name inside the guest",
			},
			cli.StringFlag{
				Name:  "user, u",
				Usage: "SSH username for the guest",
			},
			cli.StringFlag{
				Name:  "key, k",
				Usage: "Path to the SSH private key for the guest",
			},
			cli.StringFlag{
				Name:  "known-hosts",
				Usage: "Path to a known_hosts file, empty skips host key checks",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log the cmdlets without running them",
			},
		},
	}
}

func (v VMImportCommand) Action(c *cli.Context) error {
	if err := flags.Validate([]string{"dir", "name"}, c); err != nil {
		return err
	}

	configureGuest := c.String("address") != ""
	if configureGuest {
		if err := flags.Validate([]string{"user", "key", "connection"}, c); err != nil {
			return err
		}
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))
	cmdRunner := runner.NewCommandRunner(logger, c.Bool("dry-run"))
	shell := runner.NewPowerShell("", cmdRunner)

	importer := hyperv.NewImporter(shell, c.Bool("dry-run"), logger)
	ip, err := importer.Import(hyperv.Options{
		Dir:        c.String("dir"),
		Name:       c.String("name"),
		StaticMac:  c.String("mac"),
		SwitchName: c.String("switch"),
		Start:      c.Bool("start") || configureGuest,
	})
	if err != nil {
		return redCliError(err)
	}

	if ip != "" {
		fmt.Fprintln(c.App.Writer, ip)
	}

	if configureGuest && ip != "" {
		newRunner := func(host string) (ssh.RemoteRunner, error) {
			return factory.BuildRemoteRunner(host, c.String("user"), c.String("key"), c.String("known-hosts"), logger)
		}

		configurator := netconfig.NewConfigurator(newRunner, c.Bool("dry-run"), logger)
		err := configurator.Apply(netconfig.Options{
			Host:           ip,
			ConnectionName: c.String("connection"),
			Address:        c.String("address"),
			Gateway:        c.String("gateway"),
			DNS:            c.StringSlice("dns"),
		})
		if err != nil {
			return redCliError(err)
		}
	}

	return nil
}
