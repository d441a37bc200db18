package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
	"github.com/dmitrijs2005/kubelearn/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "3s" or
// integer nanoseconds. Absent fields keep their previous value.
type JsonConfig struct {
	EndpointAddr   string         `json:"endpoint_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	BcryptCost     int            `json:"bcrypt_cost"`
	QueryTimeout   timex.Duration `json:"query_timeout"`
	ConnectTimeout timex.Duration `json:"connect_timeout"`
	MaxOpenConns   int            `json:"max_open_conns"`
	RunMigrations  *bool          `json:"run_migrations"`
	LogLevel       string         `json:"log_level"`
}

func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)

	// nothing to load
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
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.QueryTimeout.Duration != 0 {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	if c.ConnectTimeout.Duration != 0 {
		config.ConnectTimeout = c.ConnectTimeout.Duration
	}
	if c.MaxOpenConns != 0 {
		config.MaxOpenConns = c.MaxOpenConns
	}
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
