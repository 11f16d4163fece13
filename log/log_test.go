package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidelabs/tidecore/config"
)

func TestNewLogger_FiltersByModule(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "node.log")
	cfg.LogFormat = config.LogFormatJSON
	cfg.LogLevel = "tidechain:info,*:error"

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}

	logger.With("module", "tidechain").Info("block committed", "height", 2)
	logger.With("module", "api").Info("request served")

	data, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "block committed") {
		t.Fatalf("tidechain info line is missing: %s", out)
	}
	if strings.Contains(out, "request served") {
		t.Fatalf("api info line passed the filter: %s", out)
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LogFormat = "xml"
	if _, err := NewLogger(cfg); err == nil {
		t.Fatal("unknown format accepted")
	}
}
