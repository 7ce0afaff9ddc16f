package main

import (
	"os"

	"github.com/hoveland/labops/cli/command"

	"github.com/urfave/cli"
)

var version string

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "labops"
	app.HelpName = "labops"
	app.Usage = "homelab backup and admin chores"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logs",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "backup",
			Usage: "Run and rotate the configured backups",
			Subcommands: []cli.Command{
				command.NewBackupRunCommand().Cli(),
				command.NewBackupRotateCommand().Cli(),
			},
		},
		{
			Name:  "static-ip",
			Usage: "Configure static addresses on remote hosts",
			Subcommands: []cli.Command{
				command.NewStaticIPSetCommand().Cli(),
			},
		},
		{
			Name:  "known-hosts",
			Usage: "Maintain the SSH known_hosts file",
			Subcommands: []cli.Command{
				command.NewKnownHostsRefreshCommand().Cli(),
			},
		},
		{
			Name:  "runner",
			Usage: "Manage the remote CI job runner",
			Subcommands: []cli.Command{
				command.NewRunnerStartCommand().Cli(),
			},
		},
		{
			Name:  "vm",
			Usage: "Import Hyper-V images",
			Subcommands: []cli.Command{
				command.NewVMImportCommand().Cli(),
			},
		},
		{
			Name:  "repo",
			Usage: "Mirror and bundle git repositories",
			Subcommands: []cli.Command{
				command.NewRepoMirrorCommand().Cli(),
				command.NewRepoBundleCommand().Cli(),
			},
		},
		{
			Name:  "version",
			Usage: "",
			Action: func(c *cli.Context) error {
				cli.ShowVersion(c)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
