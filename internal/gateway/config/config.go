// Package config handles configuration for the gateway, including defaults,
// JSON overlay, environment and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the gateway.
//
// Fields:
//   - EndpointAddr: public bind address.
//   - AuthServiceURL, UserServiceURL, FrontendURL: backend base URLs.
//   - RedisURL: session store; its DB index keeps sessions apart from the
//     directory cache.
//   - CacheOpTimeout: bound for every Redis call.
//   - SessionTTL, SlidingSessions: session lifetime and whether use extends it.
//   - CookieName, CookieSecure: session cookie settings.
//   - VerifierTimeout: bound for a login or signup call to the verifier.
//   - ProxyDialTimeout, ProxyResponseTimeout: bounds for forwarded requests.
//   - IdentitySigningKey: when set, forwarded requests carry a signed
//     X-User-Assertion.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddr         string
	AuthServiceURL       string
	UserServiceURL       string
	FrontendURL          string
	RedisURL             string
	CacheOpTimeout       time.Duration
	SessionTTL           time.Duration
	SlidingSessions      bool
	CookieName           string
	CookieSecure         bool
	VerifierTimeout      time.Duration
	ProxyDialTimeout     time.Duration
	ProxyResponseTimeout time.Duration
	IdentitySigningKey   string
	LogLevel             string
}

// sessionDB is the Redis DB index of the session store when the URL is
// assembled from REDIS_HOST.
const sessionDB = 0

func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3000"
	c.AuthServiceURL = "http://auth-service:3001"
	c.UserServiceURL = "http://user-service:3002"
	c.FrontendURL = "http://frontend-service:3003"
	c.RedisURL = "redis://redis:6379/0"
	c.CacheOpTimeout = 500 * time.Millisecond
	c.SessionTTL = 24 * time.Hour
	c.SlidingSessions = false
	c.CookieName = "kubelearn.sid"
	c.CookieSecure = false
	c.VerifierTimeout = 5 * time.Second
	c.ProxyDialTimeout = 2 * time.Second
	c.ProxyResponseTimeout = 15 * time.Second
	c.LogLevel = "info"
}

func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
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
