package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mjholt/invoice-analyzer/pkg/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display the current configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "yaml",
						Usage: "Output format (yaml, json)",
					},
				},
				Action: runConfigShow,
			},
			{
				Name:   "path",
				Usage:  "Show configuration file search paths",
				Action: runConfigPath,
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path (default: ~/.config/invoice-analyzer/config.yaml)",
					},
				},
				Action: runConfigInit,
			},
		},
	}
}

func runConfigShow(c *cli.Context) error {
	cfg, err := config.NewLoader(c.String("config")).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch c.String("format") {
	case "json":
		data, marshalErr := json.MarshalIndent(cfg, "", "  ")
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal config: %w", marshalErr)
		}
		fmt.Println(string(data))
	default:
		data, marshalErr := yaml.Marshal(cfg)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal config: %w", marshalErr)
		}
		fmt.Println("# Current Configuration")
		fmt.Println("# Source:", configSource())
		fmt.Println()
		fmt.Print(string(data))
	}

	return nil
}

func runConfigPath(c *cli.Context) error {
	fmt.Println("Configuration file search paths (in order of precedence):")
	fmt.Println()

	for i, p := range configSearchPaths() {
		exists := "not found"
		if _, err := os.Stat(p); err == nil {
			exists = "found"
		}
		fmt.Printf("  %d. %s [%s]\n", i+1, p, exists)
	}

	fmt.Println()
	fmt.Println("Active configuration:", configSource())
	return nil
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = filepath.Join(os.Getenv("HOME"), ".config", "invoice-analyzer", "config.yaml")
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", outputPath)
	}

	if err := config.Save(config.Default(), outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Default configuration written to %s\n", outputPath)
	return nil
}

// configSearchPaths lists the candidate config file locations.
func configSearchPaths() []string {
	return []string{
		"./config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "invoice-analyzer", "config.yaml"),
	}
}

// configSource returns the path of the active configuration file.
func configSource() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "defaults (no config file found)"
}
