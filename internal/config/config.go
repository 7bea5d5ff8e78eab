// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VELOCIO_PORT
const EnvPrefix = "VELOCIO"

// Config holds everything a run needs besides the instruction itself
type Config struct {
	Port        string                     `mapstructure:"port"`
	Baud        int                        `mapstructure:"baud"`
	URL         string                     `mapstructure:"url"`
	Username    string                     `mapstructure:"username"`
	NoSSLVerify bool                       `mapstructure:"no_ssl_verify"`
	Display     string                     `mapstructure:"display"`
	Settle      time.Duration              `mapstructure:"settle"`
	LogLevel    string                     `mapstructure:"log_level"`
	Operations  map[string]OperationConfig `mapstructure:"operations"`

	// File is the config file that was read, empty if none
	File string `mapstructure:"-"`
}

// OperationConfig defines a user operation as raw hex lines.
// Each line may hold one range marker.
type OperationConfig struct {
	Description string   `mapstructure:"description"`
	Frames      []string `mapstructure:"frames"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", velocio.DefaultPort)
	v.SetDefault("baud", velocio.DefaultBaudRate)
	v.SetDefault("url", "")
	v.SetDefault("username", "")
	v.SetDefault("no_ssl_verify", false)
	v.SetDefault("display", string(velocio.DisplayNormal))
	v.SetDefault("settle", velocio.DefaultSettle)
	v.SetDefault("log_level", "info")
}

// Load reads configuration into a Config.
//
// Sources in increasing priority: defaults, config file, VELOCIO_* environment,
// flags bound to v by the caller. Without an explicit configFile, .velocio.yaml
// is looked up in $HOME and the working directory and may be absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".velocio")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be checked by decoding alone
func (c *Config) Validate() error {
	if c.URL == "" && c.Port == "" {
		return fmt.Errorf("either port or url must be set")
	}
	if c.URL == "" && c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.Settle < 0 {
		return fmt.Errorf("invalid settle delay %v", c.Settle)
	}
	return nil
}

// DisplayMode parses the configured display mode
func (c *Config) DisplayMode() (velocio.DisplayMode, error) {
	return velocio.ParseDisplayMode(c.Display)
}

// CommandTable returns the builtin operations plus the user operations from
// the config file. User operations are added in name order.
func (c *Config) CommandTable() (*velocio.CommandTable, error) {
	table := velocio.DefaultCommands()

	names := make([]string, 0, len(c.Operations))
	for name := range c.Operations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		op := c.Operations[name]
		frames, err := velocio.CompileLines(op.Frames)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", name, err)
		}
		if err := table.Define(name, op.Description, frames); err != nil {
			return nil, fmt.Errorf("operation %q: %w", name, err)
		}
	}
	return table, nil
}
