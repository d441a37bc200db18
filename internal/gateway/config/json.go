package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/flagx"
	"github.com/dmitrijs2005/kubelearn/internal/timex"
)

type JsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	AuthServiceURL       string         `json:"auth_service_url"`
	UserServiceURL       string         `json:"user_service_url"`
	FrontendURL          string         `json:"frontend_url"`
	RedisURL             string         `json:"redis_url"`
	CacheOpTimeout       timex.Duration `json:"cache_op_timeout"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	SlidingSessions      *bool          `json:"sliding_sessions"`
	CookieName           string         `json:"cookie_name"`
	CookieSecure         *bool          `json:"cookie_secure"`
	VerifierTimeout      timex.Duration `json:"verifier_timeout"`
	ProxyDialTimeout     timex.Duration `json:"proxy_dial_timeout"`
	ProxyResponseTimeout timex.Duration `json:"proxy_response_timeout"`
	IdentitySigningKey   string         `json:"identity_signing_key"`
	LogLevel             string         `json:"log_level"`
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

	for dst, v := range map[*string]string{
		&config.EndpointAddr:       c.EndpointAddr,
		&config.AuthServiceURL:     c.AuthServiceURL,
		&config.UserServiceURL:     c.UserServiceURL,
		&config.FrontendURL:        c.FrontendURL,
		&config.RedisURL:           c.RedisURL,
		&config.CookieName:         c.CookieName,
		&config.IdentitySigningKey: c.IdentitySigningKey,
		&config.LogLevel:           c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}

	for dst, v := range map[*time.Duration]timex.Duration{
		&config.CacheOpTimeout:       c.CacheOpTimeout,
		&config.SessionTTL:           c.SessionTTL,
		&config.VerifierTimeout:      c.VerifierTimeout,
		&config.ProxyDialTimeout:     c.ProxyDialTimeout,
		&config.ProxyResponseTimeout: c.ProxyResponseTimeout,
	} {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	if c.SlidingSessions != nil {
		config.SlidingSessions = *c.SlidingSessions
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	return nil
}
