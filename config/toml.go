package config

import (
	"bytes"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
	tmos "github.com/tendermint/tendermint/libs/os"
)

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root, config, and data directories if they don't exist,
// and writes the default config file when it is missing.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{rootDir, filepath.Join(rootDir, defaultConfigDir), filepath.Join(rootDir, defaultDataDir)} {
		if err := tmos.EnsureDir(dir, 0700); err != nil {
			return err
		}
	}

	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if tmos.FileExists(configFilePath) {
		return nil
	}

	return WriteConfigFile(configFilePath, DefaultConfig())
}

// WriteConfigFile renders config using the template and writes it to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, config); err != nil {
		return errors.Wrap(err, "render config")
	}

	return tmos.WriteFile(configFilePath, buffer.Bytes(), 0644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

##### main base config options #####

# Path to the JSON file containing the genesis state
genesis_file = "{{ js .Genesis }}"

# Database backend: goleveldb | memdb
db_backend = "{{ .DBBackend }}"

# Database directory
db_dir = "{{ js .DBPath }}"

# Output level for logging, including package level options
log_level = "{{ .LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log_format = "{{ .LogFormat }}"

# Path to file for logs, "stdout" by default
log_path = "{{ .LogPath }}"

# Address to listen for API connections
api_listen_addr = "{{ .APIListenAddress }}"

# Expose node metrics on the /metrics endpoint of the API
prometheus = {{ .Prometheus }}

# Number of state versions kept on disk
keep_last_states = {{ .KeepLastStates }}

# Cache size of the state tree
state_cache_size = {{ .StateCacheSize }}

# Store events of every block
events_enabled = {{ .EventsEnabled }}
`
