package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("AURUM_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "" || cfg.CurrentUserID != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveConfig_RoundTripAndBackup(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("AURUM_CONFIG_DIR", cfgDir)

	first := &GlobalConfig{CurrentUserID: "user-a", DefaultFormat: "json"}
	if err := SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	second := &GlobalConfig{CurrentUserID: "user-b", DefaultFormat: "table"}
	if err := SaveConfig(second); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.CurrentUserID != "user-b" || got.DefaultFormat != "table" {
		t.Fatalf("unexpected config: %+v", got)
	}

	bak, err := os.ReadFile(filepath.Join(cfgDir, "config.json.bak"))
	if err != nil {
		t.Fatalf("expected .bak: %v", err)
	}
	var prev GlobalConfig
	if err := json.Unmarshal(bak, &prev); err != nil {
		t.Fatalf("parse .bak: %v", err)
	}
	if prev.CurrentUserID != "user-a" {
		t.Fatalf(".bak should hold previous config: %+v", prev)
	}
}

func TestDataDir_Resolution(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("AURUM_CONFIG_DIR", cfgDir)
	t.Setenv("AURUM_DIR", "")

	// Default: <configDir>/data.
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != filepath.Join(cfgDir, "data") {
		t.Fatalf("default data dir = %q", dir)
	}

	// Config override.
	if err := SaveConfig(&GlobalConfig{DataDir: "/srv/aurum"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	dir, err = DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != "/srv/aurum" {
		t.Fatalf("config data dir = %q", dir)
	}

	// Env wins over config.
	t.Setenv("AURUM_DIR", "/tmp/aurum-env")
	dir, err = DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != "/tmp/aurum-env" {
		t.Fatalf("env data dir = %q", dir)
	}
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("AURUM_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&GlobalConfig{CurrentUserID: "seed"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			cfg := &GlobalConfig{
				CurrentUserID: fmt.Sprintf("user-%d", n),
				DefaultFormat: "json",
			}
			_ = SaveConfig(cfg)
		}(i)
	}
	wg.Wait()

	// Whatever won the race, the file must parse and name one of the writers.
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig after race: %v", err)
	}
	if !strings.HasPrefix(got.CurrentUserID, "user-") {
		t.Fatalf("unexpected winner: %+v", got)
	}
}
