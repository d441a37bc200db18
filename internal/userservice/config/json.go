package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
	"github.com/dmitrijs2005/kubelearn/internal/timex"
)

type JsonConfig struct {
	EndpointAddr       string         `json:"endpoint_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	QueryTimeout       timex.Duration `json:"query_timeout"`
	ConnectTimeout     timex.Duration `json:"connect_timeout"`
	MaxOpenConns       int            `json:"max_open_conns"`
	RedisURL           string         `json:"redis_url"`
	CacheTTL           timex.Duration `json:"cache_ttl"`
	CacheOpTimeout     timex.Duration `json:"cache_op_timeout"`
	InvalidateRetries  *int           `json:"invalidate_retries"`
	IdentitySigningKey string         `json:"identity_signing_key"`
	LogLevel           string         `json:"log_level"`
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

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.IdentitySigningKey, c.IdentitySigningKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.QueryTimeout.Duration != 0 {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	if c.ConnectTimeout.Duration != 0 {
		config.ConnectTimeout = c.ConnectTimeout.Duration
	}
	if c.CacheTTL.Duration != 0 {
		config.CacheTTL = c.CacheTTL.Duration
	}
	if c.CacheOpTimeout.Duration != 0 {
		config.CacheOpTimeout = c.CacheOpTimeout.Duration
	}
	if c.MaxOpenConns != 0 {
		config.MaxOpenConns = c.MaxOpenConns
	}
	if c.InvalidateRetries != nil {
		config.InvalidateRetries = *c.InvalidateRetries
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
