package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config carries the optional YAML configuration for the CLI. Flags take
// precedence over config values when both are set.
type Config struct {
	Database string    `mapstructure:"database"`
	Log      LogConfig `mapstructure:"log"`
}

// LogConfig selects logger verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var cfg *Config

// loadConfig reads the config file at path, if one was given. A missing
// --config flag is not an error; a named file that cannot be read is.
func loadConfig(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg = &c
	return nil
}
