package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Settings are the CLI defaults read from the config file. Flags override
// every value.
type Settings struct {
	Server    string         `toml:"server"`
	GRPCAddr  string         `toml:"grpc_addr"`
	Transport string         `toml:"transport"`
	NATSURL   string         `toml:"nats_url"`
	Export    ExportSettings `toml:"export"`
}

// ExportSettings are the defaults of rx export and the browser's export.
type ExportSettings struct {
	Company   string `toml:"company"`
	Author    string `toml:"author"`
	Version   string `toml:"version"`
	OutputDir string `toml:"output_dir"`
}

// settingsPath returns $ROLODEX_CONFIG or ~/.config/rolodex/config.toml.
func settingsPath() (string, error) {
	if p := os.Getenv("ROLODEX_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rolodex", "config.toml"), nil
}

// loadSettings decodes the config file at path. A missing file yields zero
// settings.
func loadSettings(path string) (Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	return s, nil
}

// Cached settings, loaded once per process.
var (
	settingsOnce   sync.Once
	cachedSettings Settings
)

// loadSettingsOnce returns the process settings. An unreadable config file
// is ignored and reported once on stderr.
func loadSettingsOnce() Settings {
	settingsOnce.Do(func() {
		path, err := settingsPath()
		if err != nil {
			return
		}
		s, err := loadSettings(path)
		if err != nil {
			warnf("ignoring config file %s: %v", path, err)
			return
		}
		cachedSettings = s
	})
	return cachedSettings
}
