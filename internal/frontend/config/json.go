package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
)

type JsonConfig struct {
	EndpointAddr       string `json:"endpoint_addr"`
	IdentitySigningKey string `json:"identity_signing_key"`
	LogLevel           string `json:"log_level"`
}

func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.IdentitySigningKey != "" {
		config.IdentitySigningKey = c.IdentitySigningKey
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
