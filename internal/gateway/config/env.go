package config

import (
	"errors"
	"os"

	"github.com/dmitrijs2005/kubelearn/internal/envx"
)

// parseEnv reads PORT, AUTH_SERVICE_URL, USER_SERVICE_URL, FRONTEND_URL,
// REDIS_URL (or REDIS_HOST/REDIS_PORT), SESSION_TTL, SESSION_SLIDING,
// SESSION_COOKIE_NAME, COOKIE_SECURE, IDENTITY_SIGNING_KEY and LOG_LEVEL.
// NODE_ENV=production turns on secure cookies unless COOKIE_SECURE says
// otherwise.
func parseEnv(config *Config) error {
	envx.Addr(&config.EndpointAddr, "PORT")
	envx.String(&config.AuthServiceURL, "AUTH_SERVICE_URL")
	envx.String(&config.UserServiceURL, "USER_SERVICE_URL")
	envx.String(&config.FrontendURL, "FRONTEND_URL")
	envx.RedisURL(&config.RedisURL, sessionDB)
	envx.String(&config.RedisURL, "REDIS_URL")
	envx.String(&config.CookieName, "SESSION_COOKIE_NAME")
	envx.String(&config.IdentitySigningKey, "IDENTITY_SIGNING_KEY")
	envx.String(&config.LogLevel, "LOG_LEVEL")

	if os.Getenv("NODE_ENV") == "production" {
		config.CookieSecure = true
	}

	return errors.Join(
		envx.Duration(&config.SessionTTL, "SESSION_TTL"),
		envx.Duration(&config.CacheOpTimeout, "CACHE_OP_TIMEOUT"),
		envx.Duration(&config.VerifierTimeout, "VERIFIER_TIMEOUT"),
		envx.Bool(&config.SlidingSessions, "SESSION_SLIDING"),
		envx.Bool(&config.CookieSecure, "COOKIE_SECURE"),
	)
}
