package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.KeepLastStates = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("keep_last_states 0 passed validation")
	}

	cfg = DefaultConfig()
	cfg.DBBackend = "rocksdb"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unsupported backend passed validation")
	}

	cfg = DefaultConfig()
	cfg.APIListenAddress = "0.0.0.0"
	if err := cfg.Validate(); err == nil {
		t.Fatal("address without host passed validation")
	}
}

func TestEnsureRoot_WritesReadableConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := EnsureRoot(root); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(root, defaultConfigFilePath))
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Prometheus = true
	if err := v.Unmarshal(cfg); err != nil {
		t.Fatal(err)
	}
	cfg.SetRoot(root)

	want := DefaultConfig()
	if cfg.Prometheus != want.Prometheus {
		t.Fatalf("prometheus, want %t, got %t", want.Prometheus, cfg.Prometheus)
	}
	if cfg.KeepLastStates != want.KeepLastStates {
		t.Fatalf("keep_last_states, want %d, got %d", want.KeepLastStates, cfg.KeepLastStates)
	}
	if cfg.DBDir() != filepath.Join(root, defaultDataDir) {
		t.Fatalf("db dir, want %s, got %s", filepath.Join(root, defaultDataDir), cfg.DBDir())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}
