package main

import (
	"os"

	"github.com/tidelabs/tidecore/cmd/tidecore/cmd"
	"github.com/tidelabs/tidecore/cmd/utils"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.PersistentFlags().StringVar(&utils.TidecoreHome, "home-dir", "", "base dir (default is $HOME/.tidecore)")
	rootCmd.PersistentFlags().StringVar(&utils.TidecoreConfig, "config", "", "path to config.toml (default is $HOME/.tidecore/config/config.toml)")

	rootCmd.AddCommand(
		cmd.Init,
		cmd.VerifyGenesis,
		cmd.ImportGenesis,
		cmd.ExportCommand,
		cmd.Serve,
		cmd.Version,
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
