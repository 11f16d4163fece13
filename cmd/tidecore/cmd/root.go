package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tidelabs/tidecore/cmd/utils"
	"github.com/tidelabs/tidecore/config"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:          "tidecore",
	Short:        "Tidechain state machine node",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.DefaultConfig()

		configPath := utils.GetTidecoreConfigPath()
		if tmos.FileExists(configPath) {
			v := viper.New()
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "read config %s", configPath)
			}
			if err := v.Unmarshal(cfg); err != nil {
				return errors.Wrap(err, "decode config")
			}
		}

		cfg.SetRoot(utils.GetTidecoreHome())

		return cfg.Validate()
	},
}

func openStorage() *utils.Storage {
	return utils.NewStorage(cfg.DBDir(), cfg.DBBackend)
}
