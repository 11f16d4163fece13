package utils

import (
	"os"
	"path/filepath"
)

var (
	TidecoreHome   string
	TidecoreConfig string
)

func GetTidecoreHome() string {
	if TidecoreHome != "" {
		return TidecoreHome
	}

	home := os.Getenv("TIDECOREHOME")

	if home != "" {
		return home
	}

	return os.ExpandEnv(filepath.Join("$HOME", ".tidecore"))
}

func GetTidecoreConfigPath() string {
	if TidecoreConfig != "" {
		return TidecoreConfig
	}

	return filepath.Join(GetTidecoreHome(), "config", "config.toml")
}
