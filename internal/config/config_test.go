package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/floatkit/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Tooltip.Placement != DefaultPlacement {
		t.Errorf("Tooltip.Placement = %q, want %q", cfg.Tooltip.Placement, DefaultPlacement)
	}
	if cfg.Tooltip.GroupDelayDuration() != 200*time.Millisecond {
		t.Errorf("GroupDelayDuration = %v", cfg.Tooltip.GroupDelayDuration())
	}
	if !cfg.Tooltip.Delay().IsZero() {
		t.Errorf("Delay = %+v, want zero", cfg.Tooltip.Delay())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "F021") {
		t.Fatalf("Load() error = %v, want F021", err)
	}

	content := `{
  "server": {"addr": "127.0.0.1:9000"},
  "tooltip": {"placement": "top-start", "openDelay": "150ms", "closeDelay": "50ms"},
  "log": {"level": "debug"}
}`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Tooltip.Placement != "top-start" {
		t.Errorf("Tooltip.Placement = %q", cfg.Tooltip.Placement)
	}
	if d := cfg.Tooltip.Delay(); d.Open != 150*time.Millisecond || d.Close != 50*time.Millisecond {
		t.Errorf("Delay = %+v", d)
	}
	// Defaults fill what the file leaves out.
	if cfg.Tooltip.GroupDelay != DefaultGroupDelay || cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v", cfg.Log.SlogLevel())
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpDir); !errors.HasCode(err, "F020") {
		t.Errorf("Load() error = %v, want F020", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad placement", func(c *Config) { c.Tooltip.Placement = "middle" }, "tooltip.placement"},
		{"dangling alignment", func(c *Config) { c.Tooltip.Placement = "bottom-" }, "tooltip.placement"},
		{"bad duration", func(c *Config) { c.Tooltip.GroupDelay = "soon" }, "tooltip.groupDelay"},
		{"negative delay", func(c *Config) { c.Tooltip.OpenDelay = "-1s" }, "tooltip.openDelay"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad namespace", func(c *Config) { c.Metrics.Namespace = "float-kit" }, "metrics.namespace"},
		{"bad addr", func(c *Config) { c.Server.Addr = "nowhere" }, "server.addr"},
		{"bad origin", func(c *Config) { c.Server.AllowedOrigins = []string{"::"} }, "server.allowedOrigins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, "F022") {
				t.Fatalf("Validate() error = %v, want F022", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %s", err.Error(), tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
	cfg.Tooltip.Placement = "left"
	cfg.Tooltip.GroupTimeout = "300ms"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Tooltip.Placement != "left" || loaded.Tooltip.GroupTimeoutDuration() != 300*time.Millisecond {
		t.Errorf("loaded = %+v", loaded.Tooltip)
	}

	loaded.Log.Level = "warn"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", again.Log.Level)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists mismatch")
	}
}
