package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig builds a Config from defaults, an optional TOML file at
// paths.Main, and VESTD_-prefixed environment overrides, in that
// order of increasing precedence, then validates the result.
func LoadConfig(paths ConfigPaths) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VESTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := ""
	if paths.Main != "" {
		v.SetConfigFile(paths.Main)
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if !notFound && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: reading %s: %w", paths.Main, err)
			}
		} else {
			configPath = paths.Main
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.configPath = configPath

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}
