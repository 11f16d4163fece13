package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/statistics"
	"github.com/tidelabs/tidecore/core/tidechain"
)

var ExportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export the state at a height as a genesis file",
	RunE:  export,
}

func init() {
	ExportCommand.Flags().Uint64("height", 0, "height of the state to export, the latest one when 0")
	ExportCommand.Flags().String("chain-id", defaultChainID, "chain id of the exported genesis")
	ExportCommand.Flags().String("out", "genesis.json", "path of the exported genesis file")
}

func export(cmd *cobra.Command, args []string) error {
	height, err := cmd.Flags().GetUint64("height")
	if err != nil {
		return err
	}
	chainID, err := cmd.Flags().GetString("chain-id")
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	log.Println("Start exporting...")

	blockchain, err := tidechain.NewBlockchain(openStorage(), cfg, statistics.New(statistics.NopMetrics()), nil)
	if err != nil {
		return err
	}
	defer blockchain.Close()

	if height == 0 {
		height = blockchain.Height()
	}

	var cState *state.CheckState
	if height == blockchain.Height() {
		cState = blockchain.CurrentState()
	} else if cState, err = blockchain.CheckStateAtHeight(height); err != nil {
		return err
	}
	if cState == nil {
		log.Panicf("No state at height %d", height)
	}

	appState := cState.Export()
	if err := appState.Verify(); err != nil {
		log.Panicf("Exported state is not valid: %s", err)
	}

	genDoc, err := newGenesisDoc(chainID, int64(height), appState)
	if err != nil {
		return err
	}
	if err := genDoc.SaveAs(out); err != nil {
		return err
	}

	log.Printf("Exported state at height %d to %s", height, out)
	return nil
}
