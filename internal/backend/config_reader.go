package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration written as "5s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config mirrors config.toml.
type Config struct {
	Server struct {
		URL     string   `toml:"url"`
		Timeout Duration `toml:"timeout"`
	} `toml:"server"`
	UI struct {
		PollInterval    Duration `toml:"poll_interval"`
		HighlightWindow Duration `toml:"highlight_window"`
		Theme           string   `toml:"theme"`
	} `toml:"ui"`
	General struct {
		StateDir    string `toml:"state_dir"`
		DownloadDir string `toml:"download_dir"`
		LogLevel    string `toml:"log_level"`
		MetricsAddr string `toml:"metrics_addr"`
	} `toml:"general"`

	path string
}

// Path returns the file the config was read from.
func (c Config) Path() string { return c.path }

// DefaultConfig returns the built-in settings.
func DefaultConfig(appName string) Config {
	var c Config
	c.Server.URL = "http://127.0.0.1:8080"
	c.Server.Timeout = Duration{5 * time.Second}
	c.UI.PollInterval = Duration{5 * time.Second}
	c.UI.HighlightWindow = Duration{3 * time.Second}
	home, _ := os.UserHomeDir()
	c.General.StateDir = filepath.Join(home, ".local", "share", appName)
	c.General.DownloadDir = filepath.Join(home, "Downloads")
	c.General.LogLevel = "info"
	return c
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath(appName string) string {
	if p := os.Getenv("MASQUE_PANEL_CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// ReadConfigFile reads the TOML config at path on top of the defaults. A
// missing file is not an error.
func ReadConfigFile(appName, path string) (Config, error) {
	cfg := DefaultConfig(appName)
	cfg.path = path
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if env := os.Getenv("MASQUE_PANEL_SERVER"); env != "" {
		cfg.Server.URL = env
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")
	cfg.General.StateDir = expandHome(cfg.General.StateDir)
	cfg.General.DownloadDir = expandHome(cfg.General.DownloadDir)
	cfg.UI.Theme = expandHome(cfg.UI.Theme)
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is empty")
	}
	if c.UI.PollInterval.Duration <= 0 {
		return errors.New("ui.poll_interval must be positive")
	}
	if c.UI.HighlightWindow.Duration <= 0 {
		return errors.New("ui.highlight_window must be positive")
	}
	return nil
}

// LastClientPath returns where the last submitted create form is remembered.
func LastClientPath(stateDir string) string {
	return filepath.Join(stateDir, "last-client.toml")
}

// ReadLastClient returns the remembered create form, defaulting the MTU.
func ReadLastClient(stateDir string) CreateParams {
	var p CreateParams
	if _, err := toml.DecodeFile(LastClientPath(stateDir), &p); err != nil {
		p = CreateParams{}
	}
	if p.MTU == "" {
		p.MTU = fmt.Sprint(DefaultMTU)
	}
	return p
}

// WriteLastClient remembers the create form for next time.
func WriteLastClient(stateDir string, p CreateParams) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(LastClientPath(stateDir))
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
