package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/imgajeed76/gridcore/internal/util"
)

// GlobalConfig represents user preferences stored in the user's config
// directory. They apply to every grid unless its grid.toml says otherwise.
type GlobalConfig struct {
	Display  DisplayConfig  `toml:"display"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// DisplayConfig contains presentation preferences
type DisplayConfig struct {
	PageSize     int    `toml:"page_size" config:"display.page_size" default:"20" min:"1" max:"10000" desc:"Rows per page"`
	Density      string `toml:"density" config:"display.density" default:"comfortable" enum:"comfortable,compact,spacious" desc:"Row spacing"`
	MaxCellWidth int    `toml:"max_cell_width" config:"display.max_cell_width" default:"40" min:"4" max:"1000" desc:"Truncate cells wider than this"`
	FullScreen   bool   `toml:"full_screen" config:"display.full_screen" default:"false" desc:"Start in fullscreen (alternate screen)"`
	NoColor      bool   `toml:"no_color" config:"display.no_color" default:"false" desc:"Disable colors"`
}

// DatabaseConfig contains defaults for the postgres source
type DatabaseConfig struct {
	URL            string `toml:"url" config:"database.url" desc:"Default PostgreSQL connection URL"`
	MaxRows        int    `toml:"max_rows" config:"database.max_rows" default:"10000" min:"1" max:"10000000" desc:"Stop reading a query after this many rows"`
	TimeoutSeconds int    `toml:"timeout_seconds" config:"database.timeout_seconds" default:"30" min:"1" max:"3600" desc:"Connect and query timeout"`
}

// LogConfig contains diagnostic logging settings
type LogConfig struct {
	Level string `toml:"level" config:"log.level" default:"warn" enum:"debug,info,warn,error" desc:"Log level"`
	File  string `toml:"file" config:"log.file" desc:"Write logs to this file (empty = stderr)"`
}

// DefaultGlobalConfig returns a new global config with default values
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Display: DisplayConfig{
			PageSize:     20,
			Density:      "comfortable",
			MaxCellWidth: 40,
		},
		Database: DatabaseConfig{
			MaxRows:        10000,
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// GlobalConfigPath returns the path to the global config file
// Follows XDG Base Directory spec on Linux, platform conventions elsewhere
func GlobalConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", util.ConfigDir)
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), util.ConfigDir)
	default: // Linux and others - follow XDG
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, util.ConfigDir)
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", util.ConfigDir)
		}
	}

	return filepath.Join(configDir, util.ConfigFile)
}

// LoadGlobal reads the global config file, falling back to defaults if it doesn't exist
func LoadGlobal() (*GlobalConfig, error) {
	return loadGlobalFrom(GlobalConfigPath())
}

func loadGlobalFrom(configPath string) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	// Zero is never a valid value for these; treat it as unset
	defaults := DefaultGlobalConfig()
	if cfg.Display.PageSize == 0 {
		cfg.Display.PageSize = defaults.Display.PageSize
	}
	if cfg.Display.Density == "" {
		cfg.Display.Density = defaults.Display.Density
	}
	if cfg.Display.MaxCellWidth == 0 {
		cfg.Display.MaxCellWidth = defaults.Display.MaxCellWidth
	}
	if cfg.Database.MaxRows == 0 {
		cfg.Database.MaxRows = defaults.Database.MaxRows
	}
	if cfg.Database.TimeoutSeconds == 0 {
		cfg.Database.TimeoutSeconds = defaults.Database.TimeoutSeconds
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return cfg, nil
}

// Save writes the global config file
func (c *GlobalConfig) Save() error {
	return c.saveTo(GlobalConfigPath())
}

func (c *GlobalConfig) saveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// GetValue returns a global config value by key (uses reflection)
func (c *GlobalConfig) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a global config value by key (uses reflection with validation)
func (c *GlobalConfig) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}

// ListGlobalKeys returns all available global config keys (uses reflection)
func ListGlobalKeys() []string {
	return ListKeys()
}
