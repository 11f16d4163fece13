package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tidelabs/tidecore/config"
)

var Init = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory with default config and genesis",
	RunE:  initHome,
}

func init() {
	Init.Flags().String("chain-id", defaultChainID, "chain id of the new genesis")
}

func initHome(cmd *cobra.Command, args []string) error {
	chainID, err := cmd.Flags().GetString("chain-id")
	if err != nil {
		return err
	}

	if err := config.EnsureRoot(cfg.RootDir); err != nil {
		return err
	}

	genesisPath := cfg.GenesisFile()
	if tmos.FileExists(genesisPath) {
		fmt.Printf("Found genesis file %s\n", genesisPath)
		return nil
	}

	genDoc, err := newGenesisDoc(chainID, 1, defaultAppState())
	if err != nil {
		return err
	}
	if err := genDoc.SaveAs(genesisPath); err != nil {
		return err
	}

	fmt.Printf("Generated genesis file %s\n", genesisPath)
	return nil
}
