// Package main provides the invoice-analyzer CLI application.
//
// Invoice Analyzer ingests exported cloud provider invoice records,
// normalizes the nested billing items into a flat row model, and
// renders aggregated charge reports with an optional live watch mode.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set during build time.
var version = "dev"

func main() {
	app := &cli.App{
		Name:    "invoice-analyzer",
		Usage:   "Analyze exported cloud invoice records",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"INVOICE_ANALYZER_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			reportCommand(),
			listCommand(),
			watchCommand(),
			volumesCommand(),
			configCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
