package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"github.com/tidelabs/tidecore/core/statistics"
	"github.com/tidelabs/tidecore/core/tidechain"
	"github.com/tidelabs/tidecore/log"
)

var ImportGenesis = &cobra.Command{
	Use:   "import",
	Short: "Create the initial state from the genesis file",
	RunE:  importGenesis,
}

func importGenesis(cmd *cobra.Command, args []string) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	blockchain, err := tidechain.NewBlockchain(openStorage(), cfg, statistics.New(statistics.NopMetrics()), logger)
	if err != nil {
		return err
	}
	defer blockchain.Close()

	if height := blockchain.Height(); height != 0 {
		return errors.Errorf("state already exists at height %d", height)
	}

	hash, err := initChain(blockchain, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Imported genesis at height %d, app hash %X\n", blockchain.Height(), hash)
	return nil
}

func initChain(blockchain *tidechain.Blockchain, logger tmlog.Logger) ([]byte, error) {
	genDoc, appState, err := readGenesis(cfg.GenesisFile())
	if err != nil {
		return nil, err
	}

	logger.Info("Importing genesis", "chain_id", genDoc.ChainID, "initial_height", genDoc.InitialHeight)
	return blockchain.InitChain(appState, uint64(genDoc.InitialHeight))
}
