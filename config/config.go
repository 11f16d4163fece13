package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName  = "config.toml"
	defaultGenesisJSONName = "genesis.json"
)

var (
	defaultConfigFilePath  = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisJSONPath = filepath.Join(defaultConfigDir, defaultGenesisJSONName)
)

// Config defines the top level configuration of a Tidecore node
type Config struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Path to the JSON file containing the genesis AppState
	Genesis string `mapstructure:"genesis_file"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	// Path to file for logs, "stdout" by default
	LogPath string `mapstructure:"log_path"`

	// Address to listen for API connections
	APIListenAddress string `mapstructure:"api_listen_addr"`

	// Expose node metrics on /metrics of the API
	Prometheus bool `mapstructure:"prometheus"`

	// Number of state versions to keep, older ones are pruned on commit
	KeepLastStates int64 `mapstructure:"keep_last_states"`

	StateCacheSize int `mapstructure:"state_cache_size"`

	// Store block events, needed by /events/:height
	EventsEnabled bool `mapstructure:"events_enabled"`
}

// DefaultConfig returns a default configuration for a Tidecore node
func DefaultConfig() *Config {
	return &Config{
		Genesis:          defaultGenesisJSONPath,
		DBBackend:        "goleveldb",
		DBPath:           defaultDataDir,
		LogLevel:         DefaultPackageLogLevels(),
		LogFormat:        LogFormatPlain,
		LogPath:          "stdout",
		APIListenAddress: "tcp://0.0.0.0:8841",
		Prometheus:       false,
		KeepLastStates:   120,
		StateCacheSize:   1000000,
		EventsEnabled:    true,
	}
}

// SetRoot sets the RootDir
func (cfg *Config) SetRoot(root string) *Config {
	cfg.RootDir = root
	return cfg
}

// GenesisFile returns the full path to the genesis.json file
func (cfg Config) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg Config) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ConfigFile returns the full path to the config.toml file
func (cfg Config) ConfigFile() string {
	return rootify(defaultConfigFilePath, cfg.RootDir)
}

// APIHost returns host:port of the API listen address
func (cfg Config) APIHost() (string, error) {
	u, err := url.Parse(cfg.APIListenAddress)
	if err != nil {
		return "", errors.Wrap(err, "api_listen_addr")
	}
	if u.Host == "" {
		return "", fmt.Errorf("api_listen_addr %q has no host", cfg.APIListenAddress)
	}
	return u.Host, nil
}

// Validate performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg Config) Validate() error {
	switch cfg.DBBackend {
	case "goleveldb", "memdb":
	default:
		return fmt.Errorf("unsupported db_backend %q", cfg.DBBackend)
	}
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log_format %q", cfg.LogFormat)
	}
	if cfg.KeepLastStates < 1 {
		return errors.New("keep_last_states field should be greater than 0")
	}
	if cfg.StateCacheSize < 0 {
		return errors.New("state_cache_size can't be negative")
	}
	host, err := cfg.APIHost()
	if err != nil {
		return err
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		return errors.Wrap(err, "api_listen_addr")
	}
	return nil
}

// DefaultLogLevel returns a default log level of "error"
func DefaultLogLevel() string {
	return "error"
}

// DefaultPackageLogLevels returns a default log level setting so all packages
// log at "error", while the `tidechain` and `main` modules log at "info"
func DefaultPackageLogLevels() string {
	return fmt.Sprintf("main:info,tidechain:info,api:info,*:%s", DefaultLogLevel())
}

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
