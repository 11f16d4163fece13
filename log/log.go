package log

import (
	"fmt"
	"io"
	"os"

	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tidelabs/tidecore/config"
)

// NewLogger builds the process logger from log_path, log_format and log_level
func NewLogger(cfg *config.Config) (log.Logger, error) {
	var dest io.Writer = os.Stdout

	if cfg.LogPath != "" && cfg.LogPath != "stdout" {
		file, err := os.OpenFile(cfg.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}

		dest = file
	}

	var l log.Logger

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		l = log.NewTMJSONLogger(log.NewSyncWriter(dest))
	case config.LogFormatPlain:
		l = log.NewTMLogger(log.NewSyncWriter(dest))
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	return flags.ParseLogLevel(cfg.LogLevel, l, "info")
}
