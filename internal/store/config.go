package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// GlobalConfig is the per-machine config at ~/.aurum/config.json. It holds
// CLI conveniences only; user data lives in the snapshot store under DataDir.
type GlobalConfig struct {
	// DataDir overrides the default data location (~/.aurum/data).
	DataDir string `json:"dataDir,omitempty"`

	// CurrentUserID selects the default user for CLI commands.
	CurrentUserID string `json:"currentUserId,omitempty"`

	// DefaultFormat is the CLI output format (json|edn|table).
	DefaultFormat string `json:"defaultFormat,omitempty"`

	// ServerAddr is the default bind address for `aurum web serve` and the
	// default target for the chunked upload client.
	ServerAddr string `json:"serverAddr,omitempty"`

	// AnthropicModel names the model used by the AI coach when an API key
	// is configured.
	AnthropicModel string `json:"anthropicModel,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.aurum).
	if v := strings.TrimSpace(os.Getenv("AURUM_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aurum"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DataDir resolves the store dir: AURUM_DIR env, then config dataDir,
// then ~/.aurum/data.
func DataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("AURUM_DIR")); v != "" {
		return v, nil
	}
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if d := strings.TrimSpace(cfg.DataDir); d != "" {
		return d, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := &GlobalConfig{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// atomicWrite lands b at path through a uniquely named temp file in the
// same directory, so concurrent writers (cli, tui, web server) cannot
// clobber or half-write each other's files.
func atomicWrite(path string, b []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config so an accidental overwrite is
	// recoverable. Best effort.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWrite(path+".bak", prev, 0o644)
	}

	return atomicWrite(path, b, 0o600)
}
