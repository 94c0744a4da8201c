package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/swapr/bridge-tracker/logging"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the yaml config file",
	Value:   "config.yml",
	EnvVars: []string{"BRIDGE_TRACKER_CONFIG"},
}

func main() {
	logger := logging.New()

	if err := godotenv.Load(); err != nil {
		logger.WithError(err).Debug("no .env file loaded")
	}

	app := &cli.App{
		Name:  "bridge-tracker",
		Usage: "track and drive L1/L2 Arbitrum bridge transactions",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			runCommand,
			depositCommand,
			withdrawCommand,
			collectCommand,
			approveCommand,
			migrateCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("bridge-tracker failed")
	}
}
