// Package config resolves run settings from flags, EBR_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/metcalfc/ebr/internal/state"
)

// Config holds the settings for one run.
type Config struct {
	Library   string `mapstructure:"library"`
	StateDir  string `mapstructure:"state_dir"`
	ExportDir string `mapstructure:"export_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	Fresh     bool   `mapstructure:"fresh"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"state-dir":  "state_dir",
	"export-dir": "export_dir",
	"log-level":  "log_level",
	"log-file":   "log_file",
	"fresh":      "fresh",
}

// Load builds the configuration. cfgFile, when set, must exist; otherwise
// config.yaml is looked up in $XDG_CONFIG_HOME/ebr and ~/.config/ebr and is
// optional. Flags that were set on the command line take precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("library", ".")
	v.SetDefault("state_dir", state.DefaultDir())
	v.SetDefault("export_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("fresh", false)

	v.SetEnvPrefix("EBR")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$XDG_CONFIG_HOME/ebr")
		v.AddConfigPath("$HOME/.config/ebr")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "ebr.log")
	}
	return &cfg, nil
}
