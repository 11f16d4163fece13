package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var VerifyGenesis = &cobra.Command{
	Use:   "verify-genesis",
	Short: "Verify genesis file",
	RunE:  verifyGenesis,
}

func verifyGenesis(cmd *cobra.Command, args []string) error {
	_, appState, err := readGenesis(cfg.GenesisFile())
	if err != nil {
		return err
	}

	if err := appState.Verify(); err != nil {
		return err
	}

	fmt.Printf("Genesis is ok\n")

	return nil
}
