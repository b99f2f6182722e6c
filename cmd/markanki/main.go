package main

import (
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/markanki/internal/cli"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Config file and environment override the flag defaults
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ApplyConfig(flags)
	})

	rootCmd.AddCommand(
		newProcessCommand(flags),
		newSaveCommand(flags),
		newStatusCommand(flags),
		newTranslateCommand(flags),
		newCacheCommand(flags),
		newArchiveCommand(flags),
		newModelsCommand(),
	)

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
