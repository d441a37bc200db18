// Package config handles configuration for the page renderer.
package config

import (
	"os"
)

// Config holds runtime settings for the page renderer.
type Config struct {
	EndpointAddr       string
	IdentitySigningKey string
	LogLevel           string
}

func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3003"
	c.LogLevel = "info"
}

func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
