package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testexe/internal/cli"
	"testexe/internal/cli/commands"
	"testexe/internal/config"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "testexe",
		Short:   "Run unit test executables and follow their progress",
		Long:    `Discover, select and run the tests of Google Test, Boost.Test and NUnit executables. Output is parsed live into suite and case events, crashes are detected, and runs can repeat until a test fails.`,
		Version: version,
		// main prints the error
		SilenceErrors: true,
	}

	// Defaults, .env and environment; flags are applied per command
	cfg := config.Load(config.Flags{})

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
