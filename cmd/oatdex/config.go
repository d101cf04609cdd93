package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the oatdex configuration file
// (~/.config/oatdex/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	OutDir      string `yaml:"out_dir"`
	SamsungMode *bool  `yaml:"samsung_mode"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "oatdex", "config.yaml")
}

// applyExtractConfig applies config file defaults to extract command
// variables when the corresponding CLI flag was not explicitly set.
func applyExtractConfig(c *cli.Command, cfg Config, outDir *string, samsung *bool) {
	if cfg.OutDir != "" && !c.IsSet("out-dir") {
		*outDir = cfg.OutDir
	}
	if cfg.SamsungMode != nil && !c.IsSet("samsung-mode") {
		*samsung = *cfg.SamsungMode
	}
	applyLoggingConfig(c, cfg)
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	applyLoggingConfig(c, cfg)
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or fails to parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
