package cmd

import (
	"encoding/json"

	"github.com/pkg/errors"
	tmtypes "github.com/tendermint/tendermint/types"
	tmtime "github.com/tendermint/tendermint/types/time"
	"github.com/tidelabs/tidecore/core/types"
)

const defaultChainID = "tidechain-local"

// readGenesis loads the genesis document and decodes its app_state
func readGenesis(path string) (*tmtypes.GenesisDoc, types.AppState, error) {
	var appState types.AppState

	genDoc, err := tmtypes.GenesisDocFromFile(path)
	if err != nil {
		return nil, appState, err
	}

	if len(genDoc.AppState) == 0 {
		return nil, appState, errors.Errorf("genesis %s has no app_state", path)
	}
	if err := json.Unmarshal(genDoc.AppState, &appState); err != nil {
		return nil, appState, errors.Wrap(err, "decode app_state")
	}

	return genDoc, appState, nil
}

func newGenesisDoc(chainID string, initialHeight int64, appState types.AppState) (*tmtypes.GenesisDoc, error) {
	encoded, err := json.MarshalIndent(appState, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode app_state")
	}

	genDoc := &tmtypes.GenesisDoc{
		GenesisTime:   tmtime.Now(),
		ChainID:       chainID,
		InitialHeight: initialHeight,
		AppState:      encoded,
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return nil, err
	}
	return genDoc, nil
}

func defaultAppState() types.AppState {
	return types.AppState{
		Note:   "tidechain local network",
		Params: types.NewGenesisParams(types.DefaultParams()),
		Assets: []types.Asset{
			{Currency: types.NativeCurrency(), Name: "Tide", Symbol: "TIDE", Decimals: 12, Enabled: true},
		},
	}
}
