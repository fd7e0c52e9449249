package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// =============================================================================
// VOLUMES COMMAND
// =============================================================================

func volumesCommand() *cli.Command {
	return &cli.Command{
		Name:  "volumes",
		Usage: "Manage the network storage volume metadata database",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import volume records from a JSON inventory export",
				ArgsUsage: "<file>",
				Action:    runVolumesImport,
			},
			{
				Name:   "list",
				Usage:  "List stored volume records",
				Action: runVolumesList,
			},
		},
	}
}

func runVolumesImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: invoice-analyzer volumes import <file>")
	}

	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	if env.volumes == nil {
		return fmt.Errorf("volumes database unavailable at %s", env.cfg.Storage.VolumesDBPath)
	}

	path := c.Args().First()
	count, err := env.volumes.Import(path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d volume(s) from %s\n", count, path)
	return nil
}

func runVolumesList(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	if env.volumes == nil {
		return fmt.Errorf("volumes database unavailable at %s", env.cfg.Storage.VolumesDBPath)
	}

	volumes, err := env.volumes.List()
	if err != nil {
		return fmt.Errorf("failed to list volumes: %w", err)
	}

	if len(volumes) == 0 {
		fmt.Println("No volumes stored")
		return nil
	}

	fmt.Printf("Found %d volume(s):\n\n", len(volumes))
	for _, v := range volumes {
		fmt.Printf("  %d  %s\n", v.ID, v.Username)
		if v.Notes != "" {
			fmt.Printf("      Notes: %s\n", v.Notes)
		}
	}

	return nil
}
