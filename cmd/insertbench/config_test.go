package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.TableCapacity(); got != 1 {
		t.Errorf("TableCapacity() = %d, want 1", got)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
capacity = 4096
range = 1000
workers = 4
log-level = "debug"
metrics-addr = "127.0.0.1:0"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	want := DefaultConfig()
	want.Capacity = 4096
	want.Range = 1000
	want.Workers = 4
	want.LogLevel = "debug"
	want.MetricsAddr = "127.0.0.1:0"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := writeConfig(t, "ranges = 10\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "ranges") {
		t.Errorf("expected an unknown key error naming ranges, got %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, "capacity"},
		{"zero range", func(c *Config) { c.Range = 0 }, "range"},
		{"zero loops", func(c *Config) { c.Loops = 0 }, "loops"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want an error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "range = 100\nworkers = 2\n")
	cfg, err := parseConfig([]string{"-config", path, "-workers", "8", "-loops", "5"})
	if err != nil {
		t.Fatalf("parseConfig failed: %v", err)
	}
	if cfg.Range != 100 || cfg.Workers != 8 || cfg.Loops != 5 {
		t.Errorf("got range=%d workers=%d loops=%d, want 100, 8, 5", cfg.Range, cfg.Workers, cfg.Loops)
	}
	if got := cfg.TableCapacity(); got != 100 {
		t.Errorf("TableCapacity() = %d, want 100", got)
	}

	if _, err := parseConfig([]string{"-workers", "0"}); err == nil {
		t.Error("expected an error for -workers 0")
	}
}
